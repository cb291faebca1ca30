package repository

import (
	"context"
	"fmt"

	"github.com/kloir-z/gantt/internal/codec"
	"github.com/kloir-z/gantt/internal/db"
	"github.com/kloir-z/gantt/internal/domain"
)

const (
	stackPast   = "past"
	stackFuture = "future"
)

// SQLiteHistoryRepo implements HistoryRepo. Each snapshot is stored as
// its own compressed blob.
type SQLiteHistoryRepo struct {
	db db.DBTX
}

func NewSQLiteHistoryRepo(conn db.DBTX) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: conn}
}

// Save replaces both stacks of chartID. Run it inside a transaction
// together with the chart update.
func (r *SQLiteHistoryRepo) Save(ctx context.Context, chartID string, past, future []domain.Snapshot) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM history_entries WHERE chart_id = ?`, chartID); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	for _, stack := range []struct {
		name  string
		snaps []domain.Snapshot
	}{{stackPast, past}, {stackFuture, future}} {
		for seq, s := range stack.snaps {
			blob, err := codec.PackSnapshot(s)
			if err != nil {
				return fmt.Errorf("encoding %s entry %d: %w", stack.name, seq, err)
			}
			_, err = r.db.ExecContext(ctx,
				`INSERT INTO history_entries (chart_id, stack, seq, snapshot) VALUES (?, ?, ?, ?)`,
				chartID, stack.name, seq, blob)
			if err != nil {
				return fmt.Errorf("inserting %s entry %d: %w", stack.name, seq, err)
			}
		}
	}
	return nil
}

func (r *SQLiteHistoryRepo) Load(ctx context.Context, chartID string) (past, future []domain.Snapshot, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT stack, snapshot FROM history_entries WHERE chart_id = ? ORDER BY stack, seq`, chartID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stack string
		var blob []byte
		if err := rows.Scan(&stack, &blob); err != nil {
			return nil, nil, fmt.Errorf("scanning history entry: %w", err)
		}
		s, err := codec.UnpackSnapshot(blob)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding %s entry: %w", stack, err)
		}
		switch stack {
		case stackPast:
			past = append(past, s)
		case stackFuture:
			future = append(future, s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating history: %w", err)
	}
	return past, future, nil
}
