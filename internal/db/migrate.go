package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kloir-z/gantt/internal/codec"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillRowCount(db); err != nil {
		return fmt.Errorf("backfilling chart row counts: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS charts (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		settings    BLOB NOT NULL,
		snapshot    BLOB NOT NULL,
		fingerprint TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS history_entries (
		chart_id TEXT NOT NULL REFERENCES charts(id) ON DELETE CASCADE,
		stack    TEXT NOT NULL CHECK(stack IN ('past','future')),
		seq      INTEGER NOT NULL,
		snapshot BLOB NOT NULL,
		PRIMARY KEY (chart_id, stack, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_chart ON history_entries(chart_id)`,
	`CREATE INDEX IF NOT EXISTS idx_charts_updated ON charts(updated_at)`,
	// Row count for listings; -1 marks rows written before the column existed.
	`ALTER TABLE charts ADD COLUMN row_count INTEGER NOT NULL DEFAULT -1`,
}

// migrateBackfillRowCount fills row_count for charts saved before the
// column existed by decoding their snapshot.
func migrateBackfillRowCount(db *sql.DB) error {
	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT id, snapshot FROM charts WHERE row_count < 0`)
	if err != nil {
		return fmt.Errorf("listing charts for backfill: %w", err)
	}
	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			rows.Close()
			return fmt.Errorf("scanning chart: %w", err)
		}
		snap, err := codec.UnpackSnapshot(blob)
		if err != nil {
			rows.Close()
			return fmt.Errorf("decoding chart %s: %w", id, err)
		}
		counts[id] = snap.Document.Len()
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating charts: %w", err)
	}
	rows.Close()

	for id, n := range counts {
		if _, err := db.ExecContext(ctx, `UPDATE charts SET row_count = ? WHERE id = ?`, n, id); err != nil {
			return fmt.Errorf("updating chart %s: %w", id, err)
		}
	}
	return nil
}
