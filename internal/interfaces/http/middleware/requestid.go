package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request correlation ID
const RequestIDHeader = "X-Request-Id"

// RequestIDKey is the gin context key for the request ID
const RequestIDKey = "request_id"

// RequestID assigns every request a correlation ID, honoring one supplied
// by the caller, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the correlation ID assigned to this request
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
