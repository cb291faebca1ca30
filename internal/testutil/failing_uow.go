package testutil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kloir-z/gantt/internal/db"
)

// FailingUoW runs transactions through the real unit of work but makes
// the FailOn-th write inside each one return Err. Reads are not counted.
// Tests use it to check that a chart save rolls back as a whole.
type FailingUoW struct {
	DB     *sql.DB
	FailOn int
	Err    error
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: tx, failOn: u.FailOn, err: u.Err})
	})
}

type faultyTx struct {
	db.DBTX
	writes int
	failOn int
	err    error
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.writes++
	if f.writes == f.failOn {
		return nil, fmt.Errorf("write %d: %w", f.writes, f.err)
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
