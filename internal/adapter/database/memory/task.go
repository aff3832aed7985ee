package memory

import (
	"context"
	"fmt"
	"sort"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) port.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, exists := r.db.tasks[task.ID]; exists {
		return domain.Task{}, fmt.Errorf("task %s already exists", task.ID)
	}

	r.db.tasks[task.ID] = cloneTask(task)

	return cloneTask(task), nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (domain.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	task, ok := r.db.tasks[id]
	if !ok {
		return domain.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	return cloneTask(task), nil
}

func (r *TaskRepository) FindByUserID(ctx context.Context, filters domain.TaskFilters, pagination domain.Pagination) (domain.TaskConnection, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	matched := make([]domain.Task, 0)

	for _, task := range r.db.tasks {
		if task.UserID != filters.UserID {
			continue
		}

		if filters.Status != nil && task.Status != *filters.Status {
			continue
		}

		matched = append(matched, cloneTask(task))
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}

		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	start := min(pagination.Offset, total)
	end := min(start+pagination.Limit+1, total)
	page := matched[start:end]

	hasMore := len(page) > pagination.Limit
	if hasMore {
		page = page[:pagination.Limit]
	}

	return domain.TaskConnection{
		Tasks:      page,
		TotalCount: total,
		HasMore:    hasMore,
	}, nil
}

func (r *TaskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.tasks[task.ID]
	if !ok {
		return domain.Task{}, fmt.Errorf("task %s: %w", task.ID, domain.ErrNotFound)
	}

	task.UserID = current.UserID
	task.CreatedAt = current.CreatedAt
	r.db.tasks[task.ID] = cloneTask(task)

	return cloneTask(task), nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	delete(r.db.tasks, id)

	return nil
}
