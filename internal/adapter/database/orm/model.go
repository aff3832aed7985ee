package orm

import (
	"time"

	"taskmanager/internal/core/domain"
)

type UserModel struct {
	ID           string    `gorm:"primaryKey;type:text"`
	Email        string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	Name         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (UserModel) TableName() string { return "users" }

type TaskModel struct {
	ID          string `gorm:"primaryKey;type:text"`
	Title       string `gorm:"not null;size:200"`
	Description *string
	Status      string    `gorm:"not null;default:TODO;index:idx_tasks_user_status,priority:2"`
	UserID      string    `gorm:"not null;index:idx_tasks_user_created,priority:1;index:idx_tasks_user_status,priority:1"`
	User        UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index:idx_tasks_user_created,priority:2"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (TaskModel) TableName() string { return "tasks" }

func newTaskModel(task domain.Task) TaskModel {
	return TaskModel{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func (m TaskModel) toDomain() domain.Task {
	return domain.Task{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      domain.TaskStatus(m.Status),
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func newUserModel(user domain.User) UserModel {
	return UserModel{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Name:         user.Name,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func (m UserModel) toDomain() domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}
