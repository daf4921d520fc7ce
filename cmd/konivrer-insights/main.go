// Command konivrer-insights analyzes recorded match history: card synergies,
// decision points, performance variance, metagame cycles and player weaknesses.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/konivrer-insights/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "konivrer-insights",
		Version: version.GetVersion(),
		Short:   "Statistical insights from recorded match history",
		Long: `konivrer-insights mines recorded games for card synergies, decisive plays,
performance variance, metagame cycles and per-player weaknesses.

History is read from the SQLite database (see "import") or, with --history,
directly from a JSON or YAML file.

Examples:
  konivrer-insights import history.yaml
  konivrer-insights weakness --player alice
  konivrer-insights forecast --days 14 -o yaml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: ~/.konivrer-insights/config.toml)")
	flags.StringVar(&a.dbPath, "db", "", "History database (default: storage.path or ~/.konivrer-insights/history.db)")
	flags.StringVar(&a.historyPath, "history", "", "Read history from a JSON or YAML file instead of the database")
	flags.StringVarP(&a.output, "output", "o", formatJSON, "Output format (json, yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flags.IntVar(&a.workers, "workers", 0, "Parallel analysis shards (default: app.workers or one per CPU)")

	rootCmd.AddCommand(
		newImportCmd(a),
		newStatusCmd(a),
		newAnalyzeCmd(a),
		newSynergyCmd(a),
		newDecisionsCmd(a),
		newVarianceCmd(a),
		newCyclesCmd(a),
		newForecastCmd(a),
		newWeaknessCmd(a),
		newRecommendCmd(a),
		newSuggestCmd(a),
		newWatchCmd(a),
		newExportCmd(a),
		newBackupCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)

	return rootCmd
}
