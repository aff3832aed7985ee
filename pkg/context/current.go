package context

import (
	"context"
	"sync"
)

const (
	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
	ClientIPKey  = "client_ip"
)

// Current holds request scoped values shared between middlewares and
// handlers. It is safe for concurrent use.
type Current struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewCurrent() *Current {
	return &Current{
		data: make(map[string]string),
	}
}

func (c *Current) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *Current) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

func (c *Current) All() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]string, len(c.data))
	for k, v := range c.data {
		result[k] = v
	}
	return result
}

type contextKey string

const currentKey contextKey = "current"

func WithCurrent(ctx context.Context, current *Current) context.Context {
	return context.WithValue(ctx, currentKey, current)
}

func FromContext(ctx context.Context) (*Current, bool) {
	current, ok := ctx.Value(currentKey).(*Current)
	return current, ok
}

// GetCurrent never returns nil; a fresh Current is detached from ctx.
func GetCurrent(ctx context.Context) *Current {
	if current, ok := FromContext(ctx); ok {
		return current
	}

	return NewCurrent()
}
