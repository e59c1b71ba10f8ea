package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/gateways/database"
	"github.com/fantasyrun/runner-market/internal/logger"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "create tables, constraints, indexes and the token sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), config.StartupTimeout)
		defer cancel()

		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			logger.LogError("Failed to connect to database", err)
			return err
		}
		defer db.Close()

		if err := db.InitializeSchema(ctx); err != nil {
			logger.LogError("Migration failed", err)
			return err
		}

		logger.LogSystem("Migration completed successfully")
		return nil
	},
}
