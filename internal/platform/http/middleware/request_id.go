// Package middleware holds gin middleware shared by every route group.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID carries the request ID in both directions.
	HeaderRequestID = "X-Request-ID"
	// ContextRequestID is the gin context key of the request ID.
	ContextRequestID = "requestID"

	maxRequestIDLength = 128
)

// RequestID reuses an incoming X-Request-ID or assigns a new UUID, and echoes
// it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
