package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	"taskmanager/internal/core/telemetry"
)

const DefaultBufferSize = 16

var ErrBrokerClosed = errors.New("event broker is closed")

type subscription struct {
	events chan domain.TaskEvent
	done   chan struct{}
	once   sync.Once
}

// Broker fans task events out to in-process subscribers, one topic per user.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu         sync.RWMutex
	topics     map[string]map[*subscription]struct{}
	bufferSize int
	closed     bool
	metrics    *telemetry.AppMetrics
}

func NewBroker(bufferSize int, metrics *telemetry.AppMetrics) *Broker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &Broker{
		topics:     make(map[string]map[*subscription]struct{}),
		bufferSize: bufferSize,
		metrics:    metrics,
	}
}

var _ port.EventBroker = (*Broker)(nil)

func (b *Broker) Publish(ctx context.Context, event domain.TaskEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	if b.metrics != nil {
		b.metrics.RecordEventPublished(ctx, string(event.Type))
	}

	for sub := range b.topics[Topic(event.UserID)] {
		select {
		case sub.events <- event:
		default:
			if b.metrics != nil {
				b.metrics.RecordEventDropped(ctx)
			}

			slog.WarnContext(ctx, "Dropping task event for slow subscriber", "type", event.Type, "task_id", event.TaskID)
		}
	}

	return nil
}

func (b *Broker) Subscribe(ctx context.Context, userID string) (<-chan domain.TaskEvent, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, ErrBrokerClosed
	}

	sub := &subscription{
		events: make(chan domain.TaskEvent, b.bufferSize),
		done:   make(chan struct{}),
	}
	topic := Topic(userID)

	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*subscription]struct{})
	}

	b.topics[topic][sub] = struct{}{}

	if b.metrics != nil {
		b.metrics.IncrementSubscribers(ctx)
	}

	cancel := func() {
		b.unsubscribe(topic, sub)
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-sub.done:
		}
	}()

	return sub.events, cancel, nil
}

func (b *Broker) unsubscribe(topic string, sub *subscription) {
	sub.once.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if subs, ok := b.topics[topic]; ok {
			delete(subs, sub)

			if len(subs) == 0 {
				delete(b.topics, topic)
			}
		}

		if b.metrics != nil {
			b.metrics.DecrementSubscribers(context.Background())
		}

		close(sub.done)
		close(sub.events)
	})
}

// SubscriberCount reports the open subscriptions for a user.
func (b *Broker) SubscriberCount(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.topics[Topic(userID)])
}

func (b *Broker) Close() error {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return nil
	}

	b.closed = true

	var subs []*subscription
	topics := make(map[*subscription]string)

	for topic, set := range b.topics {
		for sub := range set {
			subs = append(subs, sub)
			topics[sub] = topic
		}
	}

	b.mu.Unlock()

	for _, sub := range subs {
		b.unsubscribe(topics[sub], sub)
	}

	return nil
}

func Topic(userID string) string {
	return "tasks:" + userID
}
