package service

import (
	"context"
	"errors"
	"fmt"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo}
}

func (us *UserService) GetByID(ctx context.Context, userID string) (domain.User, error) {
	user, err := us.repo.FindByID(ctx, userID)

	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.NewNotFoundError("User not found")
	}

	if err != nil {
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, userID string, input port.UpdateProfileInput) (domain.User, error) {
	user, err := us.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if input.Email != nil && domain.NormalizeEmail(*input.Email) != user.Email {
		existing, err := us.repo.FindByEmail(ctx, domain.NormalizeEmail(*input.Email))

		if err == nil && existing.ID != user.ID {
			return domain.User{}, domain.NewConflictError("email", "Email already in use")
		}

		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("find user by email: %w", err)
		}

		if err := user.UpdateEmail(*input.Email); err != nil {
			return domain.User{}, err
		}
	}

	if input.Name != nil {
		if err := user.UpdateName(*input.Name); err != nil {
			return domain.User{}, err
		}
	}

	updated, err := us.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.User{}, err
		}

		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	return updated, nil
}
