package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/ticketdesk/internal/infrastructure/ratelimit"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockLimiter struct {
	decision ratelimit.Decision
	err      error
	keys     []string
}

func (m *mockLimiter) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
	m.keys = append(m.keys, key)
	return m.decision, m.err
}

func (m *mockLimiter) Reset(_ context.Context, _ string) error { return nil }

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func serve(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Limit(t *testing.T) {
	reset := time.Unix(1700000060, 0)

	tests := []struct {
		name       string
		limiter    *mockLimiter
		wantStatus int
		wantHeader bool
	}{
		{
			name:       "allowed",
			limiter:    &mockLimiter{decision: ratelimit.Decision{Allowed: true, Remaining: 9, ResetAt: reset}},
			wantStatus: http.StatusOK,
			wantHeader: true,
		},
		{
			name:       "exceeded",
			limiter:    &mockLimiter{decision: ratelimit.Decision{Allowed: false, ResetAt: reset}},
			wantStatus: http.StatusTooManyRequests,
			wantHeader: true,
		},
		{
			name:       "store unavailable fails open",
			limiter:    &mockLimiter{err: errors.New("dial tcp: connection refused")},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.limiter, 10, logger.NewNop())
			w := serve(newEngine(rl.Limit()), http.MethodGet, "/ping", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Len(t, tt.limiter.keys, 1)
			if tt.wantHeader {
				assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
				assert.Equal(t, "1700000060", w.Header().Get("X-RateLimit-Reset"))
			} else {
				assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
			}
		})
	}
}

func TestCORS(t *testing.T) {
	r := newEngine(CORS([]string{"http://localhost:3000"}))

	t.Run("allowed origin echoed", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://localhost:3000"})
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin not echoed", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://evil.example"})
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		w := serve(r, http.MethodOptions, "/ping", map[string]string{"Origin": "http://localhost:3000"})
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("wildcard", func(t *testing.T) {
		w := serve(newEngine(CORS([]string{"*"})), http.MethodGet, "/ping", map[string]string{"Origin": "http://any.example"})
		assert.Equal(t, "http://any.example", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(logger.NewNop()))

	w := serve(r, http.MethodGet, "/panic", map[string]string{"Authorization": "Bearer secret"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error occurred")
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestSecurityHeaders(t *testing.T) {
	w := serve(newEngine(SecurityHeaders()), http.MethodGet, "/ping", nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestLogger_PassesThrough(t *testing.T) {
	w := serve(newEngine(Logger(logger.NewNop())), http.MethodGet, "/ping", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestLogger_KeepsCallerRequestID(t *testing.T) {
	engine := newEngine(Logger(logger.NewNop()))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
