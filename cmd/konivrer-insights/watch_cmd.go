package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
	"github.com/ramonehamilton/konivrer-insights/internal/logging"
	"github.com/ramonehamilton/konivrer-insights/internal/storage"
	"github.com/ramonehamilton/konivrer-insights/internal/watch"
)

type watchSummary struct {
	Refreshes int64     `json:"refreshes" yaml:"refreshes"`
	Failures  int64     `json:"failures" yaml:"failures"`
	LastRun   uuid.UUID `json:"last_run" yaml:"last_run"`
}

func newWatchCmd(a *app) *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep analyses current while the history changes",
		Long: `Re-run every enabled analysis when the --history file changes, on a cron
schedule, or both. Refreshes are debounced and throttled by the [watch]
configuration. Prints a summary on exit.

Examples:
  konivrer-insights watch --history history.yaml
  konivrer-insights watch --schedule "*/15 * * * *"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !cmd.Flags().Changed("schedule") {
				schedule = a.cfg.Watch.Schedule
			}
			if a.historyPath == "" && schedule == "" {
				return errors.New("nothing to watch: pass --history or set a schedule")
			}

			debounce, err := a.cfg.GetDebounce()
			if err != nil {
				return err
			}
			minInterval, err := a.cfg.GetMinInterval()
			if err != nil {
				return err
			}

			var source watch.Source = watch.FileSource{Path: a.historyPath}
			if a.historyPath == "" {
				db, _, err := a.openDB()
				if err != nil {
					return err
				}
				service := storage.NewService(db)
				defer service.Close()
				source = watch.DatabaseSource{Service: service}
			}

			engine, err := a.engine()
			if err != nil {
				return err
			}
			store := analytics.NewStore()
			refresher := watch.NewRefresher(engine, store, source, watch.Config{
				Debounce:    debounce,
				MinInterval: minInterval,
			}, logging.Component(a.log, "watch"))

			if _, err := refresher.Refresh(ctx); err != nil {
				return fmt.Errorf("initial refresh: %w", err)
			}

			g, gctx := errgroup.WithContext(ctx)
			if a.historyPath != "" {
				g.Go(func() error { return refresher.Watch(gctx, a.historyPath) })
			}
			if schedule != "" {
				g.Go(func() error { return refresher.Schedule(gctx, schedule) })
			}
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			summary := watchSummary{
				Refreshes: refresher.Refreshes(),
				Failures:  refresher.Failures(),
			}
			if latest := store.Latest(); latest != nil {
				summary.LastRun = latest.RunID
			}
			return a.render(summary)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule for periodic refresh (default: watch.schedule)")
	return cmd
}
