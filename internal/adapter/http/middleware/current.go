package middleware

import (
	ct "taskmanager/pkg/context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	currentKey      = "current"
)

// CurrentMiddleware attaches a request scoped Current carrying the request id
// (taken from X-Request-ID or generated) and the client ip.
func CurrentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		current := ct.NewCurrent()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		current.Set(ct.RequestIDKey, requestID)
		current.Set(ct.ClientIPKey, GetClientIP(c))

		c.Header(RequestIDHeader, requestID)
		c.Set(currentKey, current)
		c.Request = c.Request.WithContext(ct.WithCurrent(c.Request.Context(), current))

		c.Next()
	}
}

func GetCurrent(c *gin.Context) *ct.Current {
	if current, ok := c.Get(currentKey); ok {
		if curr, ok := current.(*ct.Current); ok {
			return curr
		}
	}

	return ct.GetCurrent(c.Request.Context())
}
