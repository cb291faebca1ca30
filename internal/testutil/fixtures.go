package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/kloir-z/gantt/internal/domain"
)

// Task options
type TaskOption func(*domain.ChartTask)

func WithTaskID(id string) TaskOption {
	return func(t *domain.ChartTask) {
		t.ID = id
	}
}

// WithPlanned sets the planned span. The duration is left for the caller
// (or the engine) to fill.
func WithPlanned(start, end string) TaskOption {
	return func(t *domain.ChartTask) {
		t.PlannedStart = start
		t.PlannedEnd = end
	}
}

func WithDuration(n int) TaskOption {
	return func(t *domain.ChartTask) {
		t.PlannedDuration = &n
	}
}

func WithActual(start, end string) TaskOption {
	return func(t *domain.ChartTask) {
		t.ActualStart = start
		t.ActualEnd = end
	}
}

func WithDependency(expr, targetID string) TaskOption {
	return func(t *domain.ChartTask) {
		t.DependencyExpression = expr
		t.DependencyTargetID = targetID
	}
}

func WithIncludeNonWorkingDays() TaskOption {
	return func(t *domain.ChartTask) {
		t.IncludeNonWorkingDays = true
	}
}

func WithCharge(c string) TaskOption {
	return func(t *domain.ChartTask) {
		t.Charge = c
	}
}

func NewTestTask(name string, opts ...TaskOption) domain.ChartTask {
	t := domain.ChartTask{
		ID:          uuid.New().String(),
		DisplayName: name,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func NewTestSeparator(name string, id ...string) domain.Separator {
	s := domain.Separator{ID: uuid.New().String(), DisplayName: name}
	if len(id) > 0 {
		s.ID = id[0]
	}
	return s
}

func NewTestEvent(name string, bars ...domain.SubBar) domain.Event {
	return domain.Event{
		ID:          uuid.New().String(),
		DisplayName: name,
		SubBars:     bars,
	}
}

// NewTestChart builds an unsaved chart over rows with default settings.
func NewTestChart(name string, rows ...domain.Row) *domain.Chart {
	now := time.Now().UTC()
	return &domain.Chart{
		ID:       uuid.New().String(),
		Name:     name,
		Settings: domain.DefaultSettings(),
		Snapshot: domain.Snapshot{
			Document: domain.MustDocument(rows...),
			Columns:  domain.DefaultColumns(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
