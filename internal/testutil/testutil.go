// Package testutil provisions a real Postgres schema for integration tests.
// Tests that need it are skipped unless SKILLPATH_TEST_DB points at a
// disposable database, e.g.
//
//	SKILLPATH_TEST_DB="host=localhost port=5432 user=skillpath password=dev dbname=skillpath_test sslmode=disable"
package testutil

import (
	"os"
	"testing"

	"github.com/romanzh1/skillpath/internal/repository"
)

// SetupDB connects to the test database and re-runs all migrations from
// scratch so every test starts from an empty schema.
func SetupDB(t *testing.T, migrationsDir string) *repository.Postgres {
	t.Helper()

	dsn := os.Getenv("SKILLPATH_TEST_DB")
	if dsn == "" {
		t.Skip("SKILLPATH_TEST_DB not set; skipping database integration test")
	}

	repo, err := repository.NewDB(dsn, 2, 4)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if err := repo.Reset(migrationsDir); err != nil {
		t.Fatalf("reset migrations: %v", err)
	}
	if err := repo.Up(migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return repo
}
