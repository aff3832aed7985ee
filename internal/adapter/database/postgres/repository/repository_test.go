package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"taskmanager/internal/adapter/database/postgres"
	"taskmanager/internal/core/port"
	. "taskmanager/pkg/test"
)

// databaseURL prefers TEST_DATABASE_URL and otherwise starts a throwaway
// postgres container, skipping when docker is unavailable.
func databaseURL(t *testing.T) string {
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "testdb",
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mapped, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, mapped.Port())
}

func TestPostgresRepositories(t *testing.T) {
	url := databaseURL(t)

	db, err := postgres.NewDB(context.Background(), url)
	require.NoError(t, err)
	defer db.Close()

	suite.Run(t, &RepositorySuite{
		Open: func(t *testing.T) (port.UserRepository, port.TaskRepository) {
			_, err := db.Exec(context.Background(), "TRUNCATE tasks, users")
			require.NoError(t, err)

			return NewUserRepository(db, nil), NewTaskRepository(db, nil)
		},
	})
}
