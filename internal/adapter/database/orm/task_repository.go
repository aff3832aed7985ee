package orm

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) port.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	model := newTaskModel(task)

	if err := r.db.WithContext(ctx).Omit("User").Create(&model).Error; err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}

	return model.toDomain(), nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (domain.Task, error) {
	var model TaskModel

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	if err != nil {
		return domain.Task{}, fmt.Errorf("find task: %w", err)
	}

	return model.toDomain(), nil
}

func (r *TaskRepository) FindByUserID(ctx context.Context, filters domain.TaskFilters, pagination domain.Pagination) (domain.TaskConnection, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Model(&TaskModel{}).Where("user_id = ?", filters.UserID)

		if filters.Status != nil {
			db = db.Where("status = ?", filters.Status.String())
		}

		return db
	}

	var (
		models []TaskModel
		total  int64
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return r.db.WithContext(groupCtx).Scopes(scope).
			Order("created_at DESC, id DESC").
			Limit(pagination.Limit + 1).
			Offset(pagination.Offset).
			Find(&models).Error
	})

	group.Go(func() error {
		return r.db.WithContext(groupCtx).Scopes(scope).Count(&total).Error
	})

	if err := group.Wait(); err != nil {
		return domain.TaskConnection{}, fmt.Errorf("list tasks: %w", err)
	}

	hasMore := len(models) > pagination.Limit
	if hasMore {
		models = models[:pagination.Limit]
	}

	tasks := make([]domain.Task, 0, len(models))
	for _, model := range models {
		tasks = append(tasks, model.toDomain())
	}

	return domain.TaskConnection{
		Tasks:      tasks,
		TotalCount: int(total),
		HasMore:    hasMore,
	}, nil
}

func (r *TaskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	result := r.db.WithContext(ctx).Model(&TaskModel{}).
		Where("id = ?", task.ID).
		Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"status":      task.Status.String(),
			"updated_at":  task.UpdatedAt,
		})

	if result.Error != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.Task{}, fmt.Errorf("task %s: %w", task.ID, domain.ErrNotFound)
	}

	return r.FindByID(ctx, task.ID)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&TaskModel{})

	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
