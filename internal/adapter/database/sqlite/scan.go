package sqlite

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"taskmanager/internal/core/domain"
)

var (
	TaskColumns = []string{"id", "title", "description", "status", "user_id", "created_at", "updated_at"}
	UserColumns = []string{"id", "email", "password_hash", "name", "created_at", "updated_at"}
)

type RowScanner interface {
	Scan(dest ...any) error
}

// ScanTask reads one row selected with TaskColumns.
func ScanTask(row RowScanner) (domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		status      string
	)

	err := row.Scan(&task.ID, &task.Title, &description, &status, &task.UserID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return domain.Task{}, err
	}

	if description.Valid {
		task.Description = &description.String
	}

	task.Status = domain.TaskStatus(status)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	return task, nil
}

// ScanUser reads one row selected with UserColumns.
func ScanUser(row RowScanner) (domain.User, error) {
	var user domain.User

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}

	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return user, nil
}

func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error

	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func NullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *value, Valid: true}
}
