package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/db"
	"github.com/kloir-z/gantt/internal/domain"
	"github.com/kloir-z/gantt/internal/history"
	"github.com/kloir-z/gantt/internal/repository"
	"github.com/kloir-z/gantt/internal/scheduler"
)

// Options carries the process configuration the services need.
type Options struct {
	Engine       scheduler.Options
	HistoryLimit int
	DateFormat   calendar.Format
}

type chartService struct {
	charts   repository.ChartRepo
	uow      db.UnitOfWork
	opts     Options
	observer UseCaseObserver
}

func NewChartService(charts repository.ChartRepo, uow db.UnitOfWork, opts Options, observers ...UseCaseObserver) ChartService {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = history.DefaultLimit
	}
	return &chartService{
		charts:   charts,
		uow:      uow,
		opts:     opts,
		observer: joinObservers(observers),
	}
}

func (s *chartService) Create(ctx context.Context, name, title string) (c *domain.Chart, err error) {
	done := track(ctx, s.observer, "create-chart", map[string]any{"chart": name})
	defer func() { done(err) }()

	settings := domain.DefaultSettings()
	if s.opts.DateFormat != "" {
		settings = settings.ConvertDates(s.opts.DateFormat)
	}
	settings.Title = title
	if settings.Title == "" {
		settings.Title = name
	}
	now := time.Now().UTC()
	c = &domain.Chart{
		ID:       uuid.New().String(),
		Name:     name,
		Settings: settings,
		Snapshot: domain.Snapshot{
			Document: domain.MustDocument(),
			Columns:  domain.DefaultColumns(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.ValidateName(); err != nil {
		return nil, err
	}
	if err := s.charts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *chartService) Open(ctx context.Context, ref string) (sess *Session, err error) {
	fields := map[string]any{"chart": ref}
	done := track(ctx, s.observer, "open-chart", fields)
	defer func() { done(err) }()

	var (
		chart        *domain.Chart
		past, future []domain.Snapshot
	)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		chart, err = repository.NewSQLiteChartRepo(tx).GetByName(ctx, ref)
		if err != nil {
			return err
		}
		past, future, err = repository.NewSQLiteHistoryRepo(tx).Load(ctx, chart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields["rows"] = chart.Snapshot.Document.Len()
	fields["undo_points"] = len(past)

	hist := history.New(s.opts.HistoryLimit)
	hist.Restore(past, future)
	editor := NewEditor(chart.Settings, chart.Snapshot, hist, s.opts.Engine, s.observer)
	return &Session{Chart: chart, Editor: editor}, nil
}

func (s *chartService) List(ctx context.Context) ([]repository.ChartSummary, error) {
	return s.charts.List(ctx)
}

// Save writes the chart and its history in one transaction.
func (s *chartService) Save(ctx context.Context, sess *Session) (err error) {
	fields := map[string]any{"chart": sess.Chart.Name}
	done := track(ctx, s.observer, "save-chart", fields)
	defer func() { done(err) }()

	chart := *sess.Chart
	chart.Settings = sess.Editor.Settings()
	chart.Snapshot = sess.Editor.Snapshot()
	chart.UpdatedAt = time.Now().UTC()
	past, future := sess.Editor.History().Stacks()
	fields["rows"] = chart.Snapshot.Document.Len()
	fields["undo_points"] = len(past)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteChartRepo(tx).Update(ctx, &chart); err != nil {
			return fmt.Errorf("saving chart: %w", err)
		}
		if err := repository.NewSQLiteHistoryRepo(tx).Save(ctx, chart.ID, past, future); err != nil {
			return fmt.Errorf("saving history: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	*sess.Chart = chart
	return nil
}

func (s *chartService) Remove(ctx context.Context, ref string) (err error) {
	done := track(ctx, s.observer, "remove-chart", map[string]any{"chart": ref})
	defer func() { done(err) }()

	c, err := s.charts.GetByName(ctx, ref)
	if err != nil {
		return err
	}
	return s.charts.Delete(ctx, c.ID)
}
