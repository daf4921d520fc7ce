package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/konivrer-insights/internal/storage"
)

type importOutput struct {
	File     string         `json:"file" yaml:"file"`
	Backup   string         `json:"backup,omitempty" yaml:"backup,omitempty"`
	Imported storage.Counts `json:"imported" yaml:"imported"`
	Stored   storage.Counts `json:"stored" yaml:"stored"`
}

func newImportCmd(a *app) *cobra.Command {
	var backup bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON or YAML history file into the database",
		Long: `Import players, decks, matches and metagame snapshots into the database.
Records that already exist are replaced; the whole file is imported in one
transaction.

Examples:
  konivrer-insights import history.json
  konivrer-insights import season-3.yaml --backup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := storage.ReadHistoryFile(args[0])
			if err != nil {
				return err
			}

			db, path, err := a.openDB()
			if err != nil {
				return err
			}
			service := storage.NewService(db)
			defer service.Close()

			result := importOutput{File: args[0]}
			if backup {
				result.Backup, err = storage.NewBackupManager(db, path, "").Backup(cmd.Context(), "")
				if err != nil {
					return fmt.Errorf("backup before import: %w", err)
				}
			}

			if result.Imported, err = service.ImportHistory(cmd.Context(), history); err != nil {
				return err
			}
			if result.Stored, err = service.Counts(cmd.Context()); err != nil {
				return err
			}

			a.log.WithField("file", args[0]).Info("History imported")
			return a.render(result)
		},
	}

	cmd.Flags().BoolVar(&backup, "backup", false, "Back up the database before importing")
	return cmd
}

type statusOutput struct {
	Database      string         `json:"database" yaml:"database"`
	SchemaVersion uint           `json:"schema_version" yaml:"schema_version"`
	Dirty         bool           `json:"dirty,omitempty" yaml:"dirty,omitempty"`
	Counts        storage.Counts `json:"counts" yaml:"counts"`
	Backups       int            `json:"backups" yaml:"backups"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what the history database contains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, path, err := a.openDB()
			if err != nil {
				return err
			}
			service := storage.NewService(db)
			defer service.Close()

			status := statusOutput{Database: path}
			if status.Counts, err = service.Counts(cmd.Context()); err != nil {
				return err
			}

			mgr, err := storage.NewMigrationManager(path)
			if err != nil {
				return err
			}
			status.SchemaVersion, status.Dirty, err = mgr.Version()
			if closeErr := mgr.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			backups, err := storage.NewBackupManager(db, path, "").List()
			if err != nil {
				return err
			}
			status.Backups = len(backups)

			return a.render(status)
		},
	}
}

func newBackupCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create or list database backups",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Backup directory (default: backups/ next to the database)")

	var name string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write a verified copy of the history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, path, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			backupPath, err := storage.NewBackupManager(db, path, dir).Backup(cmd.Context(), name)
			if err != nil {
				return err
			}
			a.log.WithField("path", backupPath).Info("Backup written")
			return a.render(map[string]string{"backup": backupPath})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Backup file name (default: timestamped)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List existing backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, path, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			backups, err := storage.NewBackupManager(db, path, dir).List()
			if err != nil {
				return err
			}
			return a.render(backups)
		},
	}

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}
