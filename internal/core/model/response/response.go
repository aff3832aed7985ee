package response

import (
	"time"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
)

type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskConnectionResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	TotalCount int            `json:"total_count"`
	HasMore    bool           `json:"has_more"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

type TaskEventResponse struct {
	Type       string        `json:"type"`
	TaskID     string        `json:"task_id"`
	Task       *TaskResponse `json:"task,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}

func NewTaskResponse(task domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func NewTaskConnectionResponse(connection domain.TaskConnection) TaskConnectionResponse {
	tasks := make([]TaskResponse, 0, len(connection.Tasks))

	for _, task := range connection.Tasks {
		tasks = append(tasks, NewTaskResponse(task))
	}

	return TaskConnectionResponse{
		Tasks:      tasks,
		TotalCount: connection.TotalCount,
		HasMore:    connection.HasMore,
	}
}

func NewUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: &user.CreatedAt,
		UpdatedAt: &user.UpdatedAt,
	}
}

func NewPublicUserResponse(user port.PublicUser) UserResponse {
	return UserResponse{ID: user.ID, Email: user.Email, Name: user.Name}
}

func NewTokenResponse(tokens port.TokenPair) TokenResponse {
	return TokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}
}

func NewAuthResponse(result port.AuthResult) AuthResponse {
	return AuthResponse{
		TokenResponse: NewTokenResponse(result.Tokens),
		User:          NewPublicUserResponse(result.User),
	}
}

func NewTaskEventResponse(event domain.TaskEvent) TaskEventResponse {
	payload := TaskEventResponse{
		Type:       string(event.Type),
		TaskID:     event.TaskID,
		OccurredAt: event.OccurredAt,
	}

	if event.Task != nil {
		task := NewTaskResponse(*event.Task)
		payload.Task = &task
	}

	return payload
}
