package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-Id"

// Middleware returns a Gin middleware that injects a request_id scoped logger into the
// request context and logs a summary line per request.
func Middleware(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(headerRequestID, rid)

		reqLogger := l.With("request_id", rid)
		c.Request = c.Request.WithContext(With(c.Request.Context(), reqLogger))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		// Handlers may enrich the context logger (e.g. with user_id); prefer it.
		out := From(c.Request.Context())
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
			out.Error("request", attrs...)
			return
		}
		if c.Writer.Status() >= 500 {
			out.Error("request", attrs...)
			return
		}
		out.Info("request", attrs...)
	}
}

// FromGin pulls the request-scoped logger from the Gin request context.
func FromGin(c *gin.Context) *slog.Logger {
	return From(c.Request.Context())
}
