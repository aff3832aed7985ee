package cache

import (
	"context"
	"errors"

	"taskmanager/internal/core/port"
	"taskmanager/internal/core/telemetry"
)

// Instrumented counts hits and misses of an underlying cache under name.
type Instrumented struct {
	port.CacheRepository
	metrics *telemetry.AppMetrics
	name    string
}

func NewInstrumented(inner port.CacheRepository, metrics *telemetry.AppMetrics, name string) port.CacheRepository {
	if metrics == nil {
		return inner
	}

	return &Instrumented{CacheRepository: inner, metrics: metrics, name: name}
}

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.CacheRepository.Get(ctx, key)

	switch {
	case err == nil:
		c.metrics.RecordCacheHit(ctx, c.name)
	case errors.Is(err, port.ErrCacheMiss):
		c.metrics.RecordCacheMiss(ctx, c.name)
	}

	return value, err
}
