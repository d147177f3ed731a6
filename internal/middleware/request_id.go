package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header used to propagate request IDs
const RequestIDHeader = "X-Request-ID"

// ContextRequestID is the gin context key holding the request ID
const ContextRequestID = "request_id"

// RequestID attaches a unique ID to every request. An incoming
// X-Request-ID is kept so callers can correlate across services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(ContextRequestID, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
