package orm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) port.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	model := newUserModel(user)

	err := r.db.WithContext(ctx).Create(&model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.User{}, domain.NewConflictError("email", "Email already in use")
	}

	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return model.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	result := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":         user.Email,
			"name":          user.Name,
			"password_hash": user.PasswordHash,
			"updated_at":    user.UpdatedAt,
		})

	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return domain.User{}, domain.NewConflictError("email", "Email already in use")
	}

	if result.Error != nil {
		return domain.User{}, fmt.Errorf("update user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.User{}, fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}

	return r.FindByID(ctx, user.ID)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (domain.User, error) {
	var model UserModel

	err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, fmt.Errorf("user: %w", domain.ErrNotFound)
	}

	if err != nil {
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}

	return model.toDomain(), nil
}
