package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"taskmanager/internal/adapter/database/postgres"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	tel "taskmanager/internal/core/telemetry"
)

type TaskRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewTaskRepository(db *postgres.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{db: db, telemetry: telemetry}
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "task", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "tasks",
		"db.operation": "INSERT",
		"task.id":      task.ID,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns(postgres.TaskColumns...).
		Values(task.ID, task.Title, task.Description, task.Status.String(), task.UserID, task.CreatedAt, task.UpdatedAt).
		Suffix("RETURNING " + strings.Join(postgres.TaskColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Task{}, err
	}

	created, err := postgres.ScanTask(tr.db.QueryRow(ctx, query, args...))
	tr.finish(ctx, span, "Create", startTime, err)

	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return created, nil
}

func (tr *TaskRepository) FindByID(ctx context.Context, id string) (domain.Task, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "FindByID", "task", map[string]interface{}{
		"db.system": "postgresql",
		"db.table":  "tasks",
		"task.id":   id,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(postgres.TaskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Task{}, err
	}

	task, err := postgres.ScanTask(tr.db.QueryRow(ctx, query, args...))

	if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidID(err) {
		tr.finish(ctx, span, "FindByID", startTime, nil)
		return domain.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	tr.finish(ctx, span, "FindByID", startTime, err)

	if err != nil {
		return domain.Task{}, fmt.Errorf("select task: %w", err)
	}

	return task, nil
}

func (tr *TaskRepository) FindByUserID(ctx context.Context, filters domain.TaskFilters, pagination domain.Pagination) (domain.TaskConnection, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "FindByUserID", "task", map[string]interface{}{
		"db.system":         "postgresql",
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

	pageQuery, pageArgs, err := tr.db.QueryBuilder.Select(postgres.TaskColumns...).
		From("tasks").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(pagination.Limit + 1)).
		Offset(uint64(pagination.Offset)).
		ToSql()
	if err != nil {
		return domain.TaskConnection{}, err
	}

	countQuery, countArgs, err := tr.db.QueryBuilder.Select("COUNT(*)").From("tasks").Where(where).ToSql()
	if err != nil {
		return domain.TaskConnection{}, err
	}

	var (
		tasks []domain.Task
		total int
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		rows, err := tr.db.Query(groupCtx, pageQuery, pageArgs...)
		if err != nil {
			return fmt.Errorf("select tasks: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			task, err := postgres.ScanTask(rows)
			if err != nil {
				return fmt.Errorf("scan task: %w", err)
			}

			tasks = append(tasks, task)
		}

		return rows.Err()
	})

	group.Go(func() error {
		if err := tr.db.QueryRow(groupCtx, countQuery, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count tasks: %w", err)
		}

		return nil
	})

	err = group.Wait()

	// A malformed owner id cannot own any rows.
	if postgres.IsInvalidID(err) {
		err = nil
		tasks = nil
		total = 0
	}

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

	return domain.TaskConnection{Tasks: tasks, TotalCount: total, HasMore: hasMore}, nil
}

func (tr *TaskRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Update", "task", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "tasks",
		"db.operation": "UPDATE",
		"task.id":      task.ID,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Update("tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("status", task.Status.String()).
		Set("updated_at", task.UpdatedAt).
		Where(sq.Eq{"id": task.ID}).
		Suffix("RETURNING " + strings.Join(postgres.TaskColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.Task{}, err
	}

	updated, err := postgres.ScanTask(tr.db.QueryRow(ctx, query, args...))

	if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidID(err) {
		tr.finish(ctx, span, "Update", startTime, nil)
		return domain.Task{}, fmt.Errorf("task %s: %w", task.ID, domain.ErrNotFound)
	}

	tr.finish(ctx, span, "Update", startTime, err)

	if err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}

	return updated, nil
}

func (tr *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Delete", "task", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "tasks",
		"db.operation": "DELETE",
		"task.id":      id,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	tag, err := tr.db.Exec(ctx, query, args...)

	if postgres.IsInvalidID(err) {
		tr.finish(ctx, span, "Delete", startTime, nil)
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	tr.finish(ctx, span, "Delete", startTime, err)

	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if tag.RowsAffected() == 0 {
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
