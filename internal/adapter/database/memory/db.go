package memory

import (
	"sync"

	"taskmanager/internal/core/domain"
)

// DB is an in-process store shared by the memory repositories.
type DB struct {
	mu    sync.RWMutex
	users map[string]domain.User
	tasks map[string]domain.Task
}

func NewDB() *DB {
	return &DB{
		users: make(map[string]domain.User),
		tasks: make(map[string]domain.Task),
	}
}

func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.users = make(map[string]domain.User)
	db.tasks = make(map[string]domain.Task)

	return nil
}

func cloneTask(task domain.Task) domain.Task {
	if task.Description != nil {
		description := *task.Description
		task.Description = &description
	}

	return task
}
