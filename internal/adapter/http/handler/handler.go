package handler

import (
	. "taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/core/domain"
	"taskmanager/pkg/config"
	. "taskmanager/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func startSpan(c *gin.Context, name, operation string) trace.Span {
	ctx, span := CreateChildSpan(c.Request.Context(), name, []attribute.KeyValue{
		attribute.String("handler.operation", operation),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	c.Request = c.Request.WithContext(ctx)

	return span
}

// fail records err on the span and writes the mapped error response.
// Errors outside the domain taxonomy are logged as unexpected.
func fail(c *gin.Context, span trace.Span, logger *config.Logger, message string, err error) {
	AddSpanError(span, err)

	if _, ok := domain.AsError(err); !ok {
		logger.Error(c.Request.Context(), message, zap.Error(err), zap.String("path", c.FullPath()))
	}

	SendDomainError(c, err)
}
