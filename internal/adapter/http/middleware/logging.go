package middleware

import (
	"time"

	"taskmanager/pkg/config"
	ct "taskmanager/pkg/context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func LoggingMiddleware(logger *config.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		current := GetCurrent(c)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", current.Get(ct.ClientIPKey)),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", current.Get(ct.RequestIDKey)),
		}

		if userID := current.Get(ct.UserIDKey); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if status >= 500 {
			logger.Error(c.Request.Context(), "HTTP Request", fields...)
			return
		}

		logger.Info(c.Request.Context(), "HTTP Request", fields...)
	}
}
