package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/core/port"
	"taskmanager/internal/core/telemetry"
)

func counterValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}

		total := 0.0
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}

		return total
	}

	return 0
}

func TestInstrumented(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewAppMetrics(registry)
	ctx := context.Background()

	cache := NewInstrumented(NewMemoryCache(time.Minute, time.Minute), metrics, "task_list")

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, port.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "present", []byte("v"), time.Minute))

	value, err := cache.Get(ctx, "present")
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))

	assert.Equal(t, 1.0, counterValue(t, registry, "cache_hits_total"))
	assert.Equal(t, 1.0, counterValue(t, registry, "cache_misses_total"))
}

func TestInstrumented_WithoutMetrics(t *testing.T) {
	inner := NewMemoryCache(time.Minute, time.Minute)

	assert.Same(t, inner, NewInstrumented(inner, nil, "task_list"))
}
