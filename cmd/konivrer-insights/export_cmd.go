package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/konivrer-insights/internal/export"
	"github.com/ramonehamilton/konivrer-insights/internal/version"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format    string
		file      string
		overwrite bool
	)

	sections := make([]string, 0, len(export.Sections()))
	for _, s := range export.Sections() {
		sections = append(sections, string(s))
	}

	cmd := &cobra.Command{
		Use:   "export <section>",
		Short: "Export one analysis section as CSV or JSON",
		Long: fmt.Sprintf(`Run every enabled analysis and export one section as flat rows.

Sections: %s

Examples:
  konivrer-insights export synergy --format csv --file synergy.csv
  konivrer-insights export matchups`, strings.Join(sections, ", ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: sections,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			_, snapshot, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := export.Rows(snapshot, export.Section(args[0]))
			if err != nil {
				return err
			}

			if file == "" {
				return export.WriteTo(a.out, f, rows)
			}
			if err := export.NewExporter(export.Options{Format: f, FilePath: file, Overwrite: overwrite}).Export(rows); err != nil {
				return err
			}
			a.log.WithField("file", file).Info("Export written")
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "Export format (csv, json)")
	cmd.Flags().StringVar(&file, "file", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(version.Get())
		},
	}
}
