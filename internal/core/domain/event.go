package domain

import "time"

type TaskEventType string

const (
	TaskCreated TaskEventType = "TASK_CREATED"
	TaskUpdated TaskEventType = "TASK_UPDATED"
	TaskDeleted TaskEventType = "TASK_DELETED"
)

// TaskEvent is published after a task mutation has been persisted.
// Task is nil for TaskDeleted; TaskID is always set.
type TaskEvent struct {
	Type       TaskEventType `json:"type"`
	UserID     string        `json:"user_id"`
	TaskID     string        `json:"task_id"`
	Task       *Task         `json:"task,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func NewTaskEvent(eventType TaskEventType, task Task) TaskEvent {
	event := TaskEvent{
		Type:       eventType,
		UserID:     task.UserID,
		TaskID:     task.ID,
		OccurredAt: time.Now().UTC(),
	}

	if eventType != TaskDeleted {
		snapshot := task
		event.Task = &snapshot
	}

	return event
}
