package factory

import (
	"time"

	"github.com/google/uuid"

	"taskmanager/internal/core/domain"
)

type TaskOption func(*domain.Task)

func WithStatus(status domain.TaskStatus) TaskOption {
	return func(t *domain.Task) { t.Status = status }
}

func WithDescription(description string) TaskOption {
	return func(t *domain.Task) { t.Description = &description }
}

func CreatedAt(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.CreatedAt = at
		t.UpdatedAt = at
	}
}

func NewTask(userID, title string, options ...TaskOption) domain.Task {
	task, err := domain.NewTask(uuid.NewString(), title, nil, domain.TaskStatusTodo, userID, time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		panic(err)
	}

	for _, option := range options {
		option(&task)
	}

	return task
}
