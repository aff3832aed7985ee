package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"

	"taskmanager/internal/adapter/database/sqlite"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	tel "taskmanager/internal/core/telemetry"
)

type TaskRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTaskRepository(db *sqlite.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "task", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "tasks",
		"db.operation": "INSERT",
		"task.id":      task.ID,
		"user.id":      task.UserID,
	})
	defer span.End()

	startTime := time.Now()

	query := tr.db.QueryBuilder.Insert("tasks").
		Columns(sqlite.TaskColumns...).
		Values(task.ID, task.Title, sqlite.NullString(task.Description), task.Status.String(), task.UserID, task.CreatedAt, task.UpdatedAt)

	_, err := query.RunWith(tr.db).ExecContext(ctx)
	tr.finish(ctx, span, "Create", startTime, err)

	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return task, nil
}

func (tr *TaskRepository) FindByID(ctx context.Context, id string) (domain.Task, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "FindByID", "task", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "tasks",
		"task.id":   id,
	})
	defer span.End()

	startTime := time.Now()

	row := tr.db.QueryBuilder.Select(sqlite.TaskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id}).
		RunWith(tr.db).
		QueryRowContext(ctx)

	task, err := sqlite.ScanTask(row)

	if errors.Is(err, sql.ErrNoRows) {
		tr.finish(ctx, span, "FindByID", startTime, nil)
		return domain.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	tr.finish(ctx, span, "FindByID", startTime, err)

	if err != nil {
		return domain.Task{}, fmt.Errorf("select task: %w", err)
	}

	return task, nil
}

// FindByUserID reads one extra row past the limit to learn whether another
// page exists. The count runs alongside the page query.
func (tr *TaskRepository) FindByUserID(ctx context.Context, filters domain.TaskFilters, pagination domain.Pagination) (domain.TaskConnection, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "FindByUserID", "task", map[string]interface{}{
		"db.system":         "sqlite",
		"db.table":          "tasks",
		"user.id":           filters.UserID,
		"pagination.limit":  pagination.Limit,
		"pagination.offset": pagination.Offset,
	})
	defer span.End()

	startTime := time.Now()

	where := sq.And{sq.Eq{"user_id": filters.UserID}}
	if filters.Status != nil {
		where = append(where, sq.Eq{"status": filters.Status.String()})
	}

	var (
		tasks []domain.Task
		total int
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		rows, err := tr.db.QueryBuilder.Select(sqlite.TaskColumns...).
			From("tasks").
			Where(where).
			OrderBy("created_at DESC", "id DESC").
			Limit(uint64(pagination.Limit + 1)).
			Offset(uint64(pagination.Offset)).
			RunWith(tr.db).
			QueryContext(groupCtx)
		if err != nil {
			return fmt.Errorf("select tasks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			task, err := sqlite.ScanTask(rows)
			if err != nil {
				return fmt.Errorf("scan task: %w", err)
			}

			tasks = append(tasks, task)
		}

		return rows.Err()
	})

	group.Go(func() error {
		err := tr.db.QueryBuilder.Select("COUNT(*)").
			From("tasks").
			Where(where).
			RunWith(tr.db).
			QueryRowContext(groupCtx).
			Scan(&total)
		if err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}

		return nil
	})

	err := group.Wait()
	tr.finish(ctx, span, "FindByUserID", startTime, err)

	if err != nil {
		return domain.TaskConnection{}, err
	}

	hasMore := len(tasks) > pagination.Limit
	if hasMore {
		tasks = tasks[:pagination.Limit]
	}

	if tasks == nil {
		tasks = []domain.Task{}
	}

	span.SetAttributes(map[string]interface{}{
		"db.rows_returned": len(tasks),
		"db.has_more":      hasMore,
		"db.total_count":   total,
	})

	return domain.TaskConnection{
		Tasks:      tasks,
		TotalCount: total,
		HasMore:    hasMore,
	}, nil
}

func (tr *TaskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Update", "task", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "tasks",
		"db.operation": "UPDATE",
		"task.id":      task.ID,
	})
	defer span.End()

	startTime := time.Now()

	result, err := tr.db.QueryBuilder.Update("tasks").
		Set("title", task.Title).
		Set("description", sqlite.NullString(task.Description)).
		Set("status", task.Status.String()).
		Set("updated_at", task.UpdatedAt).
		Where(sq.Eq{"id": task.ID}).
		RunWith(tr.db).
		ExecContext(ctx)

	tr.finish(ctx, span, "Update", startTime, err)

	if err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.Task{}, fmt.Errorf("task %s: %w", task.ID, domain.ErrNotFound)
	}

	return tr.FindByID(ctx, task.ID)
}

func (tr *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Delete", "task", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "tasks",
		"db.operation": "DELETE",
		"task.id":      id,
	})
	defer span.End()

	startTime := time.Now()

	result, err := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": id}).
		RunWith(tr.db).
		ExecContext(ctx)

	tr.finish(ctx, span, "Delete", startTime, err)

	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (tr *TaskRepository) finish(ctx context.Context, span port.Span, operation string, startTime time.Time, err error) {
	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus("ok", "")
	}

	tr.telemetry.RecordRepositoryOperation(ctx, operation, "task", time.Since(startTime), err)
}
