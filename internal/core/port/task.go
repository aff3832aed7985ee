package port

import (
	"context"

	"taskmanager/internal/core/domain"
)

// TaskRepository returns an error wrapping domain.ErrNotFound for absent ids.
type TaskRepository interface {
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	FindByID(ctx context.Context, id string) (domain.Task, error)
	FindByUserID(ctx context.Context, filters domain.TaskFilters, pagination domain.Pagination) (domain.TaskConnection, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type CreateTaskInput struct {
	Title       string
	Description *string
	Status      domain.TaskStatus
	UserID      string
}

type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput) (domain.Task, error)
	GetByID(ctx context.Context, taskID, callerID string) (domain.Task, error)
	List(ctx context.Context, filters domain.TaskFilters, pagination domain.Pagination) (domain.TaskConnection, error)
	Update(ctx context.Context, taskID, callerID string, patch domain.TaskPatch) (domain.Task, error)
	Delete(ctx context.Context, taskID, callerID string) error
}
