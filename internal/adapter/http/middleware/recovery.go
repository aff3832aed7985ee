package middleware

import (
	"fmt"

	"taskmanager/internal/adapter/http/helper"
	"taskmanager/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorMasking hides internal error details from clients when enabled.
func ErrorMasking(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(helper.MaskInternalErrorsKey, enabled)
		c.Next()
	}
}

func Recovery(logger *config.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error(c.Request.Context(), "Panic recovered", zap.Any("panic", recovered))
		helper.SendInternalError(c, fmt.Sprint(recovered))
	})
}
