// Package testutil holds helpers for MySQL-backed integration tests.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/iliyamo/donation-holds/internal/database"
)

// NewTestDB connects to TEST_MYSQL_DSN, applies migrations and returns the
// pool.  The test is skipped when the variable is unset or the server is
// unreachable.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("skipping MySQL integration tests: TEST_MYSQL_DSN not set")
	}

	db, err := database.Open(dsn)
	if err != nil {
		t.Skipf("skipping MySQL integration tests: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// TruncateAll empties every application table.
func TruncateAll(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, table := range []string{"pickup_records", "holds", "users"} {
		if _, err := db.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
