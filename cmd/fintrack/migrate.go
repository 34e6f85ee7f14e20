package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/storage"
)

func migrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.DataBackend != string(backend.SQLiteBackend) {
				return fmt.Errorf("migrate needs the sqlite backend, got %q", cfg.DataBackend)
			}
			version, err := storage.RunMigrations(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is at schema version %d\n", cfg.SQLiteDBPath, version)
			return nil
		},
	}
}
