package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kloir-z/gantt/internal/importer"
	"github.com/kloir-z/gantt/internal/repository"
)

type importService struct {
	charts   ChartService
	observer UseCaseObserver
}

func NewImportService(charts ChartService, observers ...UseCaseObserver) ImportService {
	return &importService{charts: charts, observer: joinObservers(observers)}
}

// ImportFile loads path, applies it to the chart named ref and saves the
// result. A rejected file leaves the chart untouched.
func (s *importService) ImportFile(ctx context.Context, ref, path string, opts ImportOptions) (result *ImportResult, err error) {
	fields := map[string]any{"chart": ref, "file": filepath.Base(path), "append": opts.Append}
	done := track(ctx, s.observer, "import-file", fields)
	defer func() { done(err) }()

	f, err := importer.LoadFile(path)
	if err != nil {
		return nil, err
	}

	created := false
	sess, err := s.charts.Open(ctx, ref)
	if errors.Is(err, repository.ErrChartNotFound) && opts.Create {
		title := ""
		if f.Title != nil {
			title = *f.Title
		}
		if _, err = s.charts.Create(ctx, ref, title); err != nil {
			return nil, fmt.Errorf("creating chart: %w", err)
		}
		created = true
		sess, err = s.charts.Open(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	added, res, err := sess.Editor.Import(f, opts.Append)
	if err != nil {
		return nil, fmt.Errorf("applying %s: %w", filepath.Base(path), err)
	}
	if err := s.charts.Save(ctx, sess); err != nil {
		return nil, err
	}
	fields["rows"] = res.Snapshot.Document.Len()
	fields["created"] = created

	return &ImportResult{Chart: sess.Chart, Created: created, Appended: added, Result: res}, nil
}

// Export renders the chart as a snapshot file.
func (s *importService) Export(ctx context.Context, ref string, enc importer.Encoding) ([]byte, error) {
	sess, err := s.charts.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	ed := sess.Editor
	return importer.Encode(importer.Export(ed.Settings(), ed.Snapshot()), importer.Encoding(strings.ToLower(string(enc))))
}
