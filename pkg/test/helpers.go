package test

import (
	"testing"

	"taskmanager/internal/adapter/database/sqlite"
)

// InitTestDB returns a migrated in-memory sqlite database closed at the end of the test.
func InitTestDB(t testing.TB) *sqlite.DB {
	t.Helper()

	db, err := sqlite.NewDB(sqlite.Config{Path: sqlite.MemoryPath})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
