package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	tel "taskmanager/internal/core/telemetry"
)

type TaskService struct {
	repo      port.TaskRepository
	publisher port.EventPublisher
	telemetry port.Telemetry

	cache    port.CacheRepository
	cacheTTL time.Duration
	group    singleflight.Group
}

func NewTaskService(repo port.TaskRepository, publisher port.EventPublisher, telemetry port.Telemetry) *TaskService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskService{
		repo:      repo,
		publisher: publisher,
		telemetry: telemetry,
	}
}

// WithListCache caches List results per user until the next mutation or ttl.
func (ts *TaskService) WithListCache(cache port.CacheRepository, ttl time.Duration) *TaskService {
	ts.cache = cache
	ts.cacheTTL = ttl

	return ts
}

func (ts *TaskService) Create(ctx context.Context, input port.CreateTaskInput) (domain.Task, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "Create", input.UserID, nil)
	defer span.End()

	task, err := domain.NewTask(uuid.NewString(), input.Title, input.Description, input.Status, input.UserID, time.Now().UTC())
	if err != nil {
		return domain.Task{}, err
	}

	saved, err := ts.repo.Create(ctx, task)
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "Repository create failed", "error", err, "title", task.Title)
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}

	ts.afterMutation(ctx, domain.TaskCreated, saved)

	return saved, nil
}

// GetByID returns the task only when callerID owns it.
func (ts *TaskService) GetByID(ctx context.Context, taskID, callerID string) (domain.Task, error) {
	return ts.findOwned(ctx, taskID, callerID, "view")
}

func (ts *TaskService) List(ctx context.Context, filters domain.TaskFilters, pagination domain.Pagination) (domain.TaskConnection, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "task", "List", filters.UserID, map[string]interface{}{
		"pagination.limit":  pagination.Limit,
		"pagination.offset": pagination.Offset,
	})
	defer span.End()

	if filters.UserID == "" {
		return domain.TaskConnection{}, domain.NewUnauthenticatedError("Not authenticated")
	}

	if pagination.Limit < 1 {
		return domain.TaskConnection{}, domain.NewValidationError("limit", "Limit must be greater than zero")
	}

	if pagination.Offset < 0 {
		pagination.Offset = 0
	}

	if ts.cache == nil {
		return ts.repo.FindByUserID(ctx, filters, pagination)
	}

	generation, err := ts.listGeneration(ctx, filters.UserID)
	if err != nil {
		slog.WarnContext(ctx, "Task list cache bypassed", "user_id", filters.UserID, "error", err)
		return ts.repo.FindByUserID(ctx, filters, pagination)
	}

	key := listCacheKey(filters, pagination, generation)

	if cached, err := ts.cache.Get(ctx, key); err == nil {
		var connection domain.TaskConnection

		if err := json.Unmarshal(cached, &connection); err == nil {
			span.SetAttributes(map[string]interface{}{"cache.hit": true})
			return connection, nil
		}
	}

	span.SetAttributes(map[string]interface{}{"cache.hit": false})

	// Callers joining this key share one fetch, so it must outlive the
	// request that started it.
	fetchCtx := context.WithoutCancel(ctx)

	result, err, _ := ts.group.Do(key, func() (interface{}, error) {
		connection, err := ts.repo.FindByUserID(fetchCtx, filters, pagination)
		if err != nil {
			return domain.TaskConnection{}, err
		}

		// A mutation committed during the read bumps the generation, so this
		// entry is written under a key no later reader will look up.
		if payload, err := json.Marshal(connection); err == nil {
			if err := ts.cache.Set(fetchCtx, key, payload, ts.cacheTTL); err != nil {
				slog.WarnContext(fetchCtx, "Failed to cache task list", "key", key, "error", err)
			}
		}

		return connection, nil
	})

	if err != nil {
		return domain.TaskConnection{}, err
	}

	return result.(domain.TaskConnection), nil
}

func (ts *TaskService) Update(ctx context.Context, taskID, callerID string, patch domain.TaskPatch) (domain.Task, error) {
	task, err := ts.findOwned(ctx, taskID, callerID, "update")
	if err != nil {
		return domain.Task{}, err
	}

	if patch.Title != nil {
		if err := task.UpdateTitle(*patch.Title); err != nil {
			return domain.Task{}, err
		}
	}

	if patch.DescriptionSet {
		task.UpdateDescription(patch.Description)
	}

	if patch.Status != nil {
		if err := task.ChangeStatus(*patch.Status); err != nil {
			return domain.Task{}, err
		}
	}

	updated, err := ts.repo.Update(ctx, task)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}

	ts.afterMutation(ctx, domain.TaskUpdated, updated)

	return updated, nil
}

func (ts *TaskService) Delete(ctx context.Context, taskID, callerID string) error {
	task, err := ts.findOwned(ctx, taskID, callerID, "delete")
	if err != nil {
		return err
	}

	if err := ts.repo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	ts.afterMutation(ctx, domain.TaskDeleted, task)

	return nil
}

func (ts *TaskService) findOwned(ctx context.Context, taskID, callerID, action string) (domain.Task, error) {
	task, err := ts.repo.FindByID(ctx, taskID)

	if errors.Is(err, domain.ErrNotFound) {
		return domain.Task{}, domain.NewNotFoundError("Task not found")
	}

	if err != nil {
		return domain.Task{}, fmt.Errorf("find task: %w", err)
	}

	if !task.IsOwnedBy(callerID) {
		return domain.Task{}, domain.NewUnauthorizedError(fmt.Sprintf("Unauthorized: You can only %s your own tasks", action))
	}

	return task, nil
}

// afterMutation runs once the change is persisted. Failures here are logged
// and never surface to the caller.
func (ts *TaskService) afterMutation(ctx context.Context, eventType domain.TaskEventType, task domain.Task) {
	if ts.cache != nil {
		if _, err := ts.cache.Increment(ctx, listGenerationKey(task.UserID)); err != nil {
			slog.WarnContext(ctx, "Failed to bump task list generation", "user_id", task.UserID, "error", err)
		}

		if err := ts.cache.DeleteByPrefix(ctx, listCachePrefix(task.UserID)); err != nil {
			slog.WarnContext(ctx, "Failed to invalidate task list cache", "user_id", task.UserID, "error", err)
		}
	}

	ts.telemetry.RecordBusinessEvent(ctx, string(eventType), "task", task.ID, task.UserID, map[string]interface{}{
		"status": task.Status.String(),
	})

	if ts.publisher == nil {
		return
	}

	if err := ts.publisher.Publish(ctx, domain.NewTaskEvent(eventType, task)); err != nil {
		slog.WarnContext(ctx, "Failed to publish task event", "type", eventType, "task_id", task.ID, "error", err)
	}
}

// listGeneration reads the owner's mutation counter. A missing counter is
// generation 0.
func (ts *TaskService) listGeneration(ctx context.Context, userID string) (int64, error) {
	raw, err := ts.cache.Get(ctx, listGenerationKey(userID))
	if errors.Is(err, port.ErrCacheMiss) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("read list generation: %w", err)
	}

	generation, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse list generation: %w", err)
	}

	return generation, nil
}

func listGenerationKey(userID string) string {
	return "tasks-generation:" + userID
}

func listCachePrefix(userID string) string {
	return "tasks:" + userID + ":"
}

func listCacheKey(filters domain.TaskFilters, pagination domain.Pagination, generation int64) string {
	status := "ALL"
	if filters.Status != nil {
		status = filters.Status.String()
	}

	return fmt.Sprintf("%s%d:%s:%d:%d", listCachePrefix(filters.UserID), generation, status, pagination.Limit, pagination.Offset)
}
