// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check probes, such as the database.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

const pingTimeout = 2 * time.Second

// Health returns the /healthz handler. It answers 503 when any dependency
// fails its ping and never lets the response be cached.
func Health(deps ...Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		status := http.StatusOK
		body := gin.H{"status": "ok"}
		if len(deps) > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
			defer cancel()
			for _, d := range deps {
				if err := d.PingContext(ctx); err != nil {
					slog.Error("health check failed", "error", err)
					status = http.StatusServiceUnavailable
					body = gin.H{"status": "unavailable"}
					break
				}
			}
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		c.JSON(status, body)
	}
}
