package port

import (
	"context"

	"taskmanager/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, event domain.TaskEvent) error
}

// EventSubscriber delivers the events of one user's tasks. The returned
// channel is closed once cancel is called or ctx is done.
type EventSubscriber interface {
	Subscribe(ctx context.Context, userID string) (events <-chan domain.TaskEvent, cancel func(), err error)
}

type EventBroker interface {
	EventPublisher
	EventSubscriber
	Close() error
}
