package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request. Server errors log at Error,
// client errors at Warn. Paths in skip are not logged.
func RequestLogger(logger *slog.Logger, skip ...string) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}

	return func(c *gin.Context) {
		if skipped[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes_written", c.Writer.Size(),
			"remote_addr", c.ClientIP(),
			"request_id", GetRequestID(c),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		logger.Log(c.Request.Context(), level, "HTTP request", attrs...)
	}
}
