package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDatabaseURLEnv names the variable that enables postgres-backed tests
const TestDatabaseURLEnv = "MATCHDAY_TEST_DATABASE_URL"

// SetupTestDB connects to the test database and bootstraps the schema. The
// test is skipped when MATCHDAY_TEST_DATABASE_URL is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv(TestDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set, skipping postgres test", TestDatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDBFromURL(ctx, url, 4, 1)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	return db
}

// TeardownTestDB truncates the analyses table and closes the pool
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.pool.Exec(ctx, "TRUNCATE analyses"); err != nil {
		t.Logf("warning: failed to truncate analyses: %v", err)
	}
	db.Close()
}
