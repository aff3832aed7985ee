package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"taskmanager/internal/adapter/database/sqlite"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	tel "taskmanager/internal/core/telemetry"
)

type UserRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Create", "user", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "users",
		"db.operation": "INSERT",
		"user.id":      user.ID,
	})
	defer span.End()

	startTime := time.Now()

	_, err := ur.db.QueryBuilder.Insert("users").
		Columns(sqlite.UserColumns...).
		Values(user.ID, user.Email, user.PasswordHash, user.Name, user.CreatedAt, user.UpdatedAt).
		RunWith(ur.db).
		ExecContext(ctx)

	ur.telemetry.RecordRepositoryOperation(ctx, "Create", "user", time.Since(startTime), err)

	if sqlite.IsUniqueViolation(err) {
		return domain.User{}, domain.NewConflictError("email", "Email already in use")
	}

	if err != nil {
		span.RecordError(err)
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (ur *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return ur.findOne(ctx, "FindByID", sq.Eq{"id": id})
}

func (ur *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return ur.findOne(ctx, "FindByEmail", sq.Eq{"email": email})
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Update", "user", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "users",
		"db.operation": "UPDATE",
		"user.id":      user.ID,
	})
	defer span.End()

	startTime := time.Now()

	result, err := ur.db.QueryBuilder.Update("users").
		Set("email", user.Email).
		Set("name", user.Name).
		Set("password_hash", user.PasswordHash).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		RunWith(ur.db).
		ExecContext(ctx)

	ur.telemetry.RecordRepositoryOperation(ctx, "Update", "user", time.Since(startTime), err)

	if sqlite.IsUniqueViolation(err) {
		return domain.User{}, domain.NewConflictError("email", "Email already in use")
	}

	if err != nil {
		span.RecordError(err)
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.User{}, fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}

	return ur.FindByID(ctx, user.ID)
}

func (ur *UserRepository) findOne(ctx context.Context, operation string, where sq.Eq) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, operation, "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
	})
	defer span.End()

	startTime := time.Now()

	row := ur.db.QueryBuilder.Select(sqlite.UserColumns...).
		From("users").
		Where(where).
		Limit(1).
		RunWith(ur.db).
		QueryRowContext(ctx)

	user, err := sqlite.ScanUser(row)

	if errors.Is(err, sql.ErrNoRows) {
		ur.telemetry.RecordRepositoryOperation(ctx, operation, "user", time.Since(startTime), nil)
		return domain.User{}, fmt.Errorf("user: %w", domain.ErrNotFound)
	}

	ur.telemetry.RecordRepositoryOperation(ctx, operation, "user", time.Since(startTime), err)

	if err != nil {
		span.RecordError(err)
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}
