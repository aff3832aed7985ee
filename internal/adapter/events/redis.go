package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/telemetry"
)

// RedisBroker relays task events through Redis PUBLISH/SUBSCRIBE so that
// every API instance sees mutations made by the others.
type RedisBroker struct {
	client     *redis.Client
	bufferSize int
	metrics    *telemetry.AppMetrics

	mu     sync.Mutex
	subs   map[*redis.PubSub]struct{}
	closed bool

	// confirmed runs after Redis acknowledges a subscription. Tests only.
	confirmed func()
}

func NewRedisBroker(client *redis.Client, bufferSize int, metrics *telemetry.AppMetrics) *RedisBroker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &RedisBroker{
		client:     client,
		bufferSize: bufferSize,
		metrics:    metrics,
		subs:       make(map[*redis.PubSub]struct{}),
	}
}

var _ port.EventBroker = (*RedisBroker)(nil)

func (b *RedisBroker) Publish(ctx context.Context, event domain.TaskEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode task event: %w", err)
	}

	if err := b.client.Publish(ctx, Topic(event.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish task event: %w", err)
	}

	if b.metrics != nil {
		b.metrics.RecordEventPublished(ctx, string(event.Type))
	}

	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, userID string) (<-chan domain.TaskEvent, func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, nil, ErrBrokerClosed
	}
	b.mu.Unlock()

	pubsub := b.client.Subscribe(ctx, Topic(userID))

	// Wait for the subscription confirmation so no event published right
	// after Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to task events: %w", err)
	}

	if b.confirmed != nil {
		b.confirmed()
	}

	// Close may have run while the subscription was being confirmed.
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = pubsub.Close()
		return nil, nil, ErrBrokerClosed
	}
	b.subs[pubsub] = struct{}{}
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.IncrementSubscribers(ctx)
	}

	out := make(chan domain.TaskEvent, b.bufferSize)
	done := make(chan struct{})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)

			b.mu.Lock()
			delete(b.subs, pubsub)
			b.mu.Unlock()

			_ = pubsub.Close()

			if b.metrics != nil {
				b.metrics.DecrementSubscribers(context.Background())
			}
		})
	}

	go func() {
		defer close(out)

		messages := pubsub.Channel()

		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					cancel()
					return
				}

				var event domain.TaskEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Warn("Discarding malformed task event", "channel", msg.Channel, "error", err)
					continue
				}

				select {
				case out <- event:
				default:
					if b.metrics != nil {
						b.metrics.RecordEventDropped(ctx)
					}
				}
			}
		}
	}()

	return out, cancel, nil
}

// Close stops every open subscription. The redis client is owned by the caller.
func (b *RedisBroker) Close() error {
	b.mu.Lock()
	b.closed = true

	subs := make([]*redis.PubSub, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}

	return nil
}
