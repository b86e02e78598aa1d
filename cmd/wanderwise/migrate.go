package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ebitech02/WanderWise/internal/app"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the climate cache schema to the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if err := app.Migrate(cfg); err != nil {
				return err
			}
			slog.Info("migrations applied", "path", cfg.SQLitePath)
			return nil
		},
	}
}
