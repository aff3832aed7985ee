package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"taskmanager/internal/adapter/database/postgres"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	tel "taskmanager/internal/core/telemetry"
)

type UserRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *postgres.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{db: db, telemetry: telemetry}
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Create", "user", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "users",
		"db.operation": "INSERT",
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := ur.db.QueryBuilder.Insert("users").
		Columns(postgres.UserColumns...).
		Values(user.ID, user.Email, user.PasswordHash, user.Name, user.CreatedAt, user.UpdatedAt).
		Suffix("RETURNING " + strings.Join(postgres.UserColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	created, err := postgres.ScanUser(ur.db.QueryRow(ctx, query, args...))
	ur.telemetry.RecordRepositoryOperation(ctx, "Create", "user", time.Since(startTime), err)

	if postgres.IsUniqueViolation(err) {
		return domain.User{}, domain.NewConflictError("email", "Email already in use")
	}

	if err != nil {
		span.RecordError(err)
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return created, nil
}

func (ur *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return ur.findOne(ctx, "FindByID", sq.Eq{"id": id})
}

func (ur *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return ur.findOne(ctx, "FindByEmail", sq.Eq{"email": email})
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Update", "user", map[string]interface{}{
		"db.system":    "postgresql",
		"db.table":     "users",
		"db.operation": "UPDATE",
		"user.id":      user.ID,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := ur.db.QueryBuilder.Update("users").
		Set("email", user.Email).
		Set("name", user.Name).
		Set("password_hash", user.PasswordHash).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		Suffix("RETURNING " + strings.Join(postgres.UserColumns, ", ")).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	updated, err := postgres.ScanUser(ur.db.QueryRow(ctx, query, args...))
	ur.telemetry.RecordRepositoryOperation(ctx, "Update", "user", time.Since(startTime), err)

	switch {
	case errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidID(err):
		return domain.User{}, fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	case postgres.IsUniqueViolation(err):
		return domain.User{}, domain.NewConflictError("email", "Email already in use")
	case err != nil:
		span.RecordError(err)
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	return updated, nil
}

func (ur *UserRepository) findOne(ctx context.Context, operation string, where sq.Eq) (domain.User, error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, operation, "user", map[string]interface{}{
		"db.system": "postgresql",
		"db.table":  "users",
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := ur.db.QueryBuilder.Select(postgres.UserColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.User{}, err
	}

	user, err := postgres.ScanUser(ur.db.QueryRow(ctx, query, args...))

	if errors.Is(err, pgx.ErrNoRows) || postgres.IsInvalidID(err) {
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
