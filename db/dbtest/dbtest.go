// Package dbtest provides a migrated in-memory SQLite database for tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/Dosada05/esport-arena/db"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// New creates an in-memory SQLite database and applies migrations.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	conn, err := db.Connect("sqlite3", "file::memory:?_foreign_keys=on", 5*time.Second)
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, db.Migrate(conn), "Failed to apply migrations")

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
