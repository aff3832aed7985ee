package request

import (
	"bytes"
	"encoding/json"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE todo in_progress done"`
}

// UpdateTaskRequest is a partial update. A description sent as null clears
// the stored value, an absent one keeps it.
type UpdateTaskRequest struct {
	Title       *string        `json:"title" validate:"omitempty,max=200"`
	Description OptionalString `json:"description"`
	Status      *string        `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE todo in_progress done"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

type ListTasksQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE todo in_progress done"`
	Limit  *int   `form:"limit"`
	Offset int    `form:"offset"`
}

// OptionalString tells an omitted JSON field apart from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	o.Value = &value

	return nil
}
