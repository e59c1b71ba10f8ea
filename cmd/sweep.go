package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/gateways/broker"
	"github.com/fantasyrun/runner-market/internal/gateways/chain"
	"github.com/fantasyrun/runner-market/internal/gateways/database"
	"github.com/fantasyrun/runner-market/internal/gateways/database/repositories"
	"github.com/fantasyrun/runner-market/internal/logger"
)

var sweepCMD = &cobra.Command{
	Use:   "sweep",
	Short: "expire lapsed listings and reconcile orphaned settlements once",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), config.BatchQueryTimeout)
		defer cancel()

		db, err := database.New(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		nc, err := broker.Connect(cfg.NATS, serviceName+"-sweep")
		if err != nil {
			return err
		}
		defer nc.Drain()

		verifier := chain.NewNATSVerifier(nc, cfg.Chain.SubjectPrefix, cfg.Chain.RequestTimeout.Std())
		manager := marketplace.NewManager(
			repositories.NewMarketplaceRepository(db.BunDB()),
			verifier,
			marketplace.WithSweepBatch(cfg.Market.SweepBatch),
		)

		result, err := marketplace.NewSweeper(manager, cfg.Market.SweepInterval.Std()).SweepOnce(ctx)
		logger.LogSystem("Sweep finished",
			slog.Int("expired", result.Expired),
			slog.Int("reconciled", result.Reconciled))
		return err
	},
}
