package main

import (
	"fmt"
	"os"

	"github.com/kloir-z/gantt/internal/cli"
	"github.com/kloir-z/gantt/internal/config"
	"github.com/kloir-z/gantt/internal/db"
	"github.com/kloir-z/gantt/internal/logging"
	"github.com/kloir-z/gantt/internal/repository"
	"github.com/kloir-z/gantt/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	observer := service.NewLogUseCaseObserver(logger)

	chartRepo := repository.NewSQLiteChartRepo(database)
	uow := db.NewUnitOfWork(database)

	charts := service.NewChartService(chartRepo, uow, service.Options{
		Engine:       cfg.EngineOptions(),
		HistoryLimit: cfg.HistoryLimit,
		DateFormat:   cfg.Format(),
	}, observer)

	app := &cli.App{
		Charts:       charts,
		Imports:      service.NewImportService(charts, observer),
		DefaultChart: cfg.DefaultChart,
	}

	// Confirmations need a terminal on stdin.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	logger.Debug("starting", "db", cfg.DBPath, "date_format", cfg.DateFormat)
	return cli.NewRootCmd(app).Execute()
}
