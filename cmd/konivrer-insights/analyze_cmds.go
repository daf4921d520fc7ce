package main

import (
	"github.com/spf13/cobra"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
	"github.com/ramonehamilton/konivrer-insights/internal/metrics"
)

type analyzeOutput struct {
	analytics.Snapshot `yaml:",inline"`
	Metrics            *metrics.Summary `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var withMetrics bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run every enabled analysis and print the full snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, snapshot, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			out := analyzeOutput{Snapshot: *snapshot}
			if withMetrics {
				summary := engine.Metrics().Summary()
				out.Metrics = &summary
			}
			return a.render(out)
		},
	}

	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Include analyzer timings")
	return cmd
}

func newSynergyCmd(a *app) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "synergy",
		Short: "List card pairs that win more together than apart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}
			return a.render(limit(engine.Synergies(history.Decks, history.Matches), top))
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "Show only the strongest N pairs")
	return cmd
}

func newDecisionsCmd(a *app) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "List turn actions that move the win rate most",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}
			return a.render(limit(engine.DecisionPoints(history.Matches), top))
		},
	}

	cmd.Flags().IntVar(&top, "top", 0, "Show only the N most impactful actions")
	return cmd
}

func newVarianceCmd(a *app) *cobra.Command {
	var player string

	cmd := &cobra.Command{
		Use:   "variance",
		Short: "Show how consistent each player's results are",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}

			profiles := engine.Variance(history.Players, history.Matches)
			if player == "" {
				return a.render(profiles)
			}

			filtered := []analytics.VarianceProfile{}
			for _, p := range profiles {
				if p.PlayerID == player {
					filtered = append(filtered, p)
				}
			}
			return a.render(filtered)
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Only show this player")
	return cmd
}

func newCyclesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "Detect archetypes whose popularity rises and falls periodically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}
			return a.render(engine.Cycles(history.MetaSnapshots))
		},
	}
}

func newForecastCmd(a *app) *cobra.Command {
	var days float64

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Predict archetype prevalence from detected cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("days") {
				days = a.cfg.App.ForecastDays
			}
			return a.render(engine.Forecast(engine.Cycles(history.MetaSnapshots), days))
		},
	}

	cmd.Flags().Float64Var(&days, "days", analytics.DefaultForecastHorizon, "Days into the future (default: app.forecast_days)")
	return cmd
}
