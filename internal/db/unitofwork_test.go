package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/kloir-z/gantt/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertChart = `INSERT INTO charts (id, name, settings, snapshot, created_at, updated_at)
	VALUES (?, ?, x'', x'', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`

func newUoW(t *testing.T) (*sql.DB, *db.TxUnitOfWork) {
	t.Helper()
	conn, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, db.NewUnitOfWork(conn)
}

func chartCount(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM charts`).Scan(&n))
	return n
}

func TestWithinTx_Commits(t *testing.T) {
	conn, uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertChart, "c1", "plan"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertChart, "c2", "roadmap")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, chartCount(t, conn))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	conn, uow := newUoW(t)
	failed := errors.New("history write failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertChart, "c1", "plan"); err != nil {
			return err
		}
		return failed
	})
	require.ErrorIs(t, err, failed)
	assert.Zero(t, chartCount(t, conn))
}

func TestWithinTx_RollsBackOnConstraintViolation(t *testing.T) {
	conn, uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, insertChart, "c1", "plan"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertChart, "c2", "plan")
		return err
	})
	require.Error(t, err, "chart names are unique")
	assert.Zero(t, chartCount(t, conn))
}

func TestWithinTx_RollsBackAndRepanics(t *testing.T) {
	conn, uow := newUoW(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_, _ = tx.ExecContext(ctx, insertChart, "c1", "plan")
			panic("boom")
		})
	})
	assert.Zero(t, chartCount(t, conn))

	// The single in-memory connection is usable again after the panic.
	require.NoError(t, uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.ExecContext(ctx, insertChart, "c1", "plan")
		return err
	}))
	assert.Equal(t, 1, chartCount(t, conn))
}

func TestOpenDB_CreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/dir/gantt.db"
	conn, err := db.OpenDB(path)
	require.NoError(t, err)
	defer conn.Close()

	var mode string
	require.NoError(t, conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}
