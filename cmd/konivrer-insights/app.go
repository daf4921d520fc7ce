package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
	"github.com/ramonehamilton/konivrer-insights/internal/config"
	"github.com/ramonehamilton/konivrer-insights/internal/logging"
	"github.com/ramonehamilton/konivrer-insights/internal/storage"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

// app carries global flags and the state built from them before a command runs.
type app struct {
	configPath  string
	dbPath      string
	historyPath string
	output      string
	logLevel    string
	workers     int

	cfg *config.Config
	log *logrus.Logger
	out io.Writer
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := validateFormat(a.output); err != nil {
		return err
	}

	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.App.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("workers") {
		cfg.App.Workers = a.workers
	}
	if a.dbPath != "" {
		cfg.Storage.Path = a.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(cfg.App.LogLevel, cfg.App.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	a.out = cmd.OutOrStdout()
	return nil
}

func (a *app) resolvedConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultPath()
}

func (a *app) databasePath() (string, error) {
	if a.cfg.Storage.Path != "" {
		return a.cfg.Storage.Path, nil
	}
	return config.DefaultDatabasePath()
}

func (a *app) openDB() (*storage.DB, string, error) {
	path, err := a.databasePath()
	if err != nil {
		return nil, "", err
	}
	db, err := storage.Open(storage.DefaultConfig(path))
	if err != nil {
		return nil, "", err
	}
	return db, path, nil
}

func (a *app) engine() (*analytics.Engine, error) {
	opts := []analytics.Option{
		analytics.WithLogger(logging.Component(a.log, "analytics")),
		analytics.WithForecastHorizon(a.cfg.App.ForecastDays),
	}
	if a.cfg.App.Workers > 0 {
		opts = append(opts, analytics.WithWorkers(a.cfg.App.Workers))
	}
	return analytics.NewEngine(a.cfg.Analytics, a.cfg.Features, opts...)
}

// loadHistory reads the history file given with --history, or the database.
func (a *app) loadHistory(ctx context.Context) (*models.History, error) {
	if a.historyPath != "" {
		return storage.ReadHistoryFile(a.historyPath)
	}

	db, _, err := a.openDB()
	if err != nil {
		return nil, err
	}
	service := storage.NewService(db)
	defer service.Close()

	return service.LoadHistory(ctx)
}

// snapshot runs every enabled analysis over the loaded history.
func (a *app) snapshot(ctx context.Context) (*analytics.Engine, *analytics.Snapshot, error) {
	history, err := a.loadHistory(ctx)
	if err != nil {
		return nil, nil, err
	}
	engine, err := a.engine()
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := engine.Run(ctx, history)
	if err != nil {
		return nil, nil, err
	}
	return engine, snapshot, nil
}

func (a *app) render(v any) error {
	return writeOutput(a.out, a.output, v)
}
