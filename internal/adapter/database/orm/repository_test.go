package orm

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/core/port"
	. "taskmanager/pkg/test"
)

func TestORMRepositories(t *testing.T) {
	suite.Run(t, &RepositorySuite{
		Open: func(t *testing.T) (port.UserRepository, port.TaskRepository) {
			db, err := NewDB(Config{Path: ":memory:"})
			require.NoError(t, err)

			t.Cleanup(func() { _ = Close(db) })

			return NewUserRepository(db), NewTaskRepository(db)
		},
	})
}
