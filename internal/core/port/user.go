package port

import (
	"context"

	"taskmanager/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
}

type UpdateProfileInput struct {
	Name  *string
	Email *string
}

type UserService interface {
	GetByID(ctx context.Context, userID string) (domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (domain.User, error)
}
