package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const MaxTitleLength = 200

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}

	return false
}

func (s TaskStatus) String() string {
	return string(s)
}

// ParseTaskStatus accepts the enum names case-insensitively. An empty value
// yields TaskStatusTodo.
func ParseTaskStatus(value string) (TaskStatus, error) {
	if strings.TrimSpace(value) == "" {
		return TaskStatusTodo, nil
	}

	status := TaskStatus(strings.ToUpper(strings.TrimSpace(value)))

	if !status.IsValid() {
		return "", NewValidationError("status", "Status must be one of TODO, IN_PROGRESS, DONE")
	}

	return status, nil
}

type Task struct {
	ID          string
	Title       string
	Description *string
	Status      TaskStatus
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask builds a validated task. Both timestamps are set to now.
func NewTask(id, title string, description *string, status TaskStatus, userID string, now time.Time) (Task, error) {
	if status == "" {
		status = TaskStatusTodo
	}

	if !status.IsValid() {
		return Task{}, NewValidationError("status", "Status must be one of TODO, IN_PROGRESS, DONE")
	}

	task := Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      status,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return Task{}, err
	}

	return task, nil
}

func (t *Task) Validate() error {
	return validateTitle(t.Title, "Title is required")
}

func (t *Task) UpdateTitle(title string) error {
	if err := validateTitle(title, "Title cannot be empty"); err != nil {
		return err
	}

	t.Title = title
	t.touch()

	return nil
}

func (t *Task) UpdateDescription(description *string) {
	t.Description = description
	t.touch()
}

func (t *Task) ChangeStatus(status TaskStatus) error {
	if !status.IsValid() {
		return NewValidationError("status", "Status must be one of TODO, IN_PROGRESS, DONE")
	}

	t.Status = status
	t.touch()

	return nil
}

func (t *Task) IsOwnedBy(userID string) bool {
	return t.UserID == userID
}

// touch never moves UpdatedAt backwards, even with coarse clocks.
func (t *Task) touch() {
	now := time.Now().UTC()

	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Microsecond)
	}

	t.UpdatedAt = now
}

func validateTitle(title, emptyMessage string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", emptyMessage)
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewValidationError("title", "Title must be less than 200 characters")
	}

	return nil
}

type TaskFilters struct {
	UserID string
	Status *TaskStatus
}

type Pagination struct {
	Limit  int
	Offset int
}

type TaskConnection struct {
	Tasks      []Task
	TotalCount int
	HasMore    bool
}

// TaskPatch holds a partial update. Nil fields are left untouched.
// DescriptionSet distinguishes an explicit null description from an omitted one.
type TaskPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	Status         *TaskStatus
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.DescriptionSet && p.Status == nil
}
