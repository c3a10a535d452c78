package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

const requestIDHeader = "X-Request-ID"

// Logger tags each request with an ID and logs it once the handler chain
// returns. Successful writes log at info so ticket changes leave a trail;
// reads stay at debug.
func Logger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		args := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_bytes", c.Request.ContentLength,
			"response_bytes", c.Writer.Size(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Errorw("request failed", args...)
		case status >= 400:
			log.Warnw("request rejected", args...)
		case c.Request.Method != "GET" && c.Request.Method != "HEAD" && c.Request.Method != "OPTIONS":
			log.Infow("request handled", args...)
		default:
			log.Debugw("request handled", args...)
		}
	}
}
