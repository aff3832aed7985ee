package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"taskmanager/internal/core/port"
	. "taskmanager/pkg/test"
)

func TestMemoryRepositories(t *testing.T) {
	suite.Run(t, &RepositorySuite{
		Open: func(t *testing.T) (port.UserRepository, port.TaskRepository) {
			db := NewDB()
			t.Cleanup(func() { _ = db.Close() })

			return NewUserRepository(db), NewTaskRepository(db)
		},
	})
}
