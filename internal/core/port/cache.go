package port

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	// Increment atomically adds one to a counter that never expires and
	// returns the new value. Get on the same key returns it in decimal.
	Increment(ctx context.Context, key string) (int64, error)
	Close() error
}
