package testutil

import (
	"database/sql"
	"testing"

	"github.com/kloir-z/gantt/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a migrated in-memory chart store that is closed with
// the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { conn.Close() })
	return conn
}

// NewTestUoW returns the production unit of work over conn.
func NewTestUoW(conn *sql.DB) db.UnitOfWork {
	return db.NewUnitOfWork(conn)
}
