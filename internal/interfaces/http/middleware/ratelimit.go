package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/ticketdesk/internal/infrastructure/ratelimit"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
	"github.com/orris-inc/ticketdesk/internal/shared/utils"
)

// RateLimiter enforces a per client IP request budget.
type RateLimiter struct {
	limiter ratelimit.RateLimiter
	limit   int
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.RateLimiter, limit int, log logger.Interface) *RateLimiter {
	return &RateLimiter{
		limiter: limiter,
		limit:   limit,
		logger:  log,
	}
}

// Limit returns a Gin middleware that enforces the rate limit per client IP.
// When the backing store is unavailable the request is let through.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		decision, err := rl.limiter.Allow(c.Request.Context(), "ip:"+clientIP)
		if err != nil {
			rl.logger.Warnw("rate limiter unavailable, allowing request",
				"client_ip", clientIP,
				"error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
