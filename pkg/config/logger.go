package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a trace-correlated zap logger. When a Loki URL is configured
// every Info/Error entry is also pushed to Loki in the background.
type Logger struct {
	*otelzap.Logger

	ServiceName string
	lokiURL     string
	httpClient  *http.Client
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func NewLogger(serviceName, lokiURL string, production bool) (*Logger, error) {
	config := zap.NewDevelopmentConfig()
	if production {
		config = zap.NewProductionConfig()
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	logger := &Logger{
		Logger:      otelzap.New(zapLogger),
		ServiceName: serviceName,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}

	if lokiURL != "" {
		logger.lokiURL = strings.TrimSuffix(lokiURL, "/") + "/loki/api/v1/push"
	}

	return logger, nil
}

func NewNopLogger() *Logger {
	return &Logger{
		Logger:      otelzap.New(zap.NewNop()),
		ServiceName: "test",
		httpClient:  http.DefaultClient,
	}
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) {
	fields = append(fields, zap.String("service", l.ServiceName))

	switch level {
	case zapcore.ErrorLevel:
		l.Logger.Ctx(ctx).Error(msg, fields...)
	case zapcore.WarnLevel:
		l.Logger.Ctx(ctx).Warn(msg, fields...)
	default:
		l.Logger.Ctx(ctx).Info(msg, fields...)
	}

	if l.lokiURL == "" {
		return
	}

	entry, err := l.lokiEntry(ctx, level, msg, fields)
	if err != nil {
		return
	}

	go l.push(entry)
}

func (l *Logger) lokiEntry(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) (lokiPush, error) {
	encoder := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(encoder)
	}

	line := encoder.Fields
	line["timestamp"] = time.Now().Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["message"] = msg

	if spanContext := trace.SpanFromContext(ctx).SpanContext(); spanContext.IsValid() {
		line["trace_id"] = spanContext.TraceID().String()
		line["span_id"] = spanContext.SpanID().String()
	}

	payload, err := json.Marshal(line)
	if err != nil {
		return lokiPush{}, err
	}

	return lokiPush{
		Streams: []lokiStream{
			{
				Stream: map[string]string{
					"service": l.ServiceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{strconv.FormatInt(time.Now().UnixNano(), 10), string(payload)},
				},
			},
		},
	}, nil
}

func (l *Logger) push(entry lokiPush) {
	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, l.lokiURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return
	}

	resp.Body.Close()
}
