package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kloir-z/gantt/internal/domain"
)

// ErrChartNotFound is returned when no chart matches an id or name.
var ErrChartNotFound = errors.New("chart not found")

// ChartSummary is the listing view of a chart, read without decoding
// its snapshot.
type ChartSummary struct {
	ID          string
	Name        string
	RowCount    int
	Fingerprint string
	UpdatedAt   time.Time
}

type ChartRepo interface {
	Create(ctx context.Context, c *domain.Chart) error
	GetByID(ctx context.Context, id string) (*domain.Chart, error)
	GetByName(ctx context.Context, name string) (*domain.Chart, error)
	List(ctx context.Context) ([]ChartSummary, error)
	Update(ctx context.Context, c *domain.Chart) error
	Delete(ctx context.Context, id string) error
}

// HistoryRepo stores a chart's undo and redo stacks, oldest first.
type HistoryRepo interface {
	Save(ctx context.Context, chartID string, past, future []domain.Snapshot) error
	Load(ctx context.Context, chartID string) (past, future []domain.Snapshot, err error)
}
