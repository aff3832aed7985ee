package memory

import (
	"context"
	"fmt"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) port.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if existing.Email == user.Email {
			return domain.User{}, domain.NewConflictError("email", "Email already in use")
		}
	}

	r.db.users[user.ID] = user

	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	user, ok := r.db.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, user := range r.db.users {
		if user.Email == email {
			return user, nil
		}
	}

	return domain.User{}, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.users[user.ID]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}

	for _, existing := range r.db.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return domain.User{}, domain.NewConflictError("email", "Email already in use")
		}
	}

	user.CreatedAt = current.CreatedAt
	r.db.users[user.ID] = user

	return user, nil
}
