package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestCreateChildSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	ctx, span := CreateChildSpan(context.Background(), "handler.task.Create", []attribute.KeyValue{
		attribute.String("handler.operation", "Create"),
	})

	assert.NotEmpty(t, GetTraceID(ctx))

	AddSpanError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	assert.Len(t, ended, 1)
	assert.Equal(t, "handler.task.Create", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}

func TestGetTraceID_WithoutSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}
