package service

import (
	"context"

	"github.com/kloir-z/gantt/internal/domain"
	"github.com/kloir-z/gantt/internal/importer"
	"github.com/kloir-z/gantt/internal/repository"
)

// Session is an open chart: its stored record plus the Editor holding
// the live state and history. Changes reach storage through
// ChartService.Save.
type Session struct {
	Chart  *domain.Chart
	Editor *Editor
}

type ChartService interface {
	Create(ctx context.Context, name, title string) (*domain.Chart, error)
	Open(ctx context.Context, ref string) (*Session, error)
	List(ctx context.Context) ([]repository.ChartSummary, error)
	Save(ctx context.Context, s *Session) error
	Remove(ctx context.Context, ref string) error
}

// ImportResult holds the outcome of a snapshot-file import.
type ImportResult struct {
	Chart    *domain.Chart
	Created  bool
	Appended []string
	Result   Result
}

// ImportOptions selects how a file is applied.
type ImportOptions struct {
	// Append adds the file's rows under fresh ids instead of merging.
	Append bool
	// Create makes a new chart named by the ref when none exists.
	Create bool
}

type ImportService interface {
	ImportFile(ctx context.Context, ref, path string, opts ImportOptions) (*ImportResult, error)
	Export(ctx context.Context, ref string, enc importer.Encoding) ([]byte, error)
}
