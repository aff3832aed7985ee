package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"taskmanager/internal/core/port"
)

type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

var _ port.CacheRepository = (*MemoryCache)(nil)

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := c.store.Get(key)
	if !found {
		return nil, port.ErrCacheMiss
	}

	switch v := value.(type) {
	case []byte:
		return v, nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	default:
		return nil, fmt.Errorf("unexpected cache value %T for key %s", value, key)
	}
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}

	return nil
}

func (c *MemoryCache) Increment(ctx context.Context, key string) (int64, error) {
	// Add fails when the counter already exists, which is fine.
	_ = c.store.Add(key, int64(0), gocache.NoExpiration)

	value, err := c.store.IncrementInt64(key, 1)
	if err != nil {
		return 0, fmt.Errorf("cache increment error: %w", err)
	}

	return value, nil
}

func (c *MemoryCache) Close() error {
	c.store.Flush()
	return nil
}
