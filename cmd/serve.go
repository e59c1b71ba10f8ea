package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fantasyrun/runner-market/backend"
	"github.com/fantasyrun/runner-market/backend/handlers"
	"github.com/fantasyrun/runner-market/backend/middleware"
	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/domain/catalog"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/domain/packs"
	"github.com/fantasyrun/runner-market/internal/domain/rarity"
	"github.com/fantasyrun/runner-market/internal/gateways/broker"
	"github.com/fantasyrun/runner-market/internal/gateways/chain"
	"github.com/fantasyrun/runner-market/internal/gateways/database"
	"github.com/fantasyrun/runner-market/internal/gateways/database/repositories"
	"github.com/fantasyrun/runner-market/internal/gateways/events"
	"github.com/fantasyrun/runner-market/internal/gateways/storage"
	"github.com/fantasyrun/runner-market/internal/logger"
)

var initSchema bool

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "run the marketplace API and the background sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCMD.Flags().BoolVar(&initSchema, "init-schema", false, "initialize the database schema before serving")
}

func serve(ctx context.Context) error {
	startCtx, cancel := context.WithTimeout(ctx, config.StartupTimeout)
	defer cancel()

	dbStart := time.Now()
	db, err := database.New(startCtx, cfg.DB)
	if err != nil {
		logger.LogError("Database connection failed", err, slog.Duration("attempted_for", time.Since(dbStart)))
		return err
	}
	defer db.Close()
	logger.LogSystem("Database connected",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStart)))

	if initSchema {
		if err := db.InitializeSchema(startCtx); err != nil {
			return err
		}
	}

	nc, err := broker.Connect(cfg.NATS, serviceName)
	if err != nil {
		return err
	}
	defer nc.Drain()

	publisher, err := events.NewJetStreamPublisher(startCtx, nc, cfg.NATS.Stream)
	if err != nil {
		return err
	}
	verifier := chain.NewNATSVerifier(nc, cfg.Chain.SubjectPrefix, cfg.Chain.RequestTimeout.Std())

	store, err := storage.NewSpacesStore(startCtx, cfg.Catalog)
	if err != nil {
		return err
	}
	runners := catalog.NewService(store, cfg.Catalog.Root)

	src, err := rarity.NewCryptoSeededSource()
	if err != nil {
		return fmt.Errorf("failed to seed random source: %w", err)
	}
	allocator, err := rarity.NewAllocator(rarity.WithSource(src), rarity.WithStrict(cfg.Market.StrictPackTypes))
	if err != nil {
		return err
	}

	manager := marketplace.NewManager(
		repositories.NewMarketplaceRepository(db.BunDB()),
		verifier,
		marketplace.WithPublisher(publisher),
		marketplace.WithSweepBatch(cfg.Market.SweepBatch),
	)
	packService := packs.NewService(repositories.NewPackRepository(db.BunDB()), allocator, runners, src, cfg.Catalog.Season)
	sweeper := marketplace.NewSweeper(manager, cfg.Market.SweepInterval.Std())

	webApp := &handlers.WebApp{
		Market:  manager,
		Packs:   packService,
		Runners: runners,
		Season:  cfg.Catalog.Season,
		Checks: map[string]func(context.Context) error{
			"database": db.Ping,
			"nats": func(context.Context) error {
				if status := nc.Status(); status != nats.CONNECTED {
					return fmt.Errorf("connection %s", status)
				}
				return nil
			},
		},
		Version: Version,
		Commit:  Commit,
	}

	var limiter *middleware.RateLimiter
	if cfg.Web.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.Web.RateLimit, config.RateLimitWindow)
	}
	app := backend.NewApp(webApp, cfg.Web, limiter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sweeper.Run(gctx)
		return nil
	})
	if limiter != nil {
		g.Go(func() error {
			limiter.Cleanup(gctx)
			return nil
		})
	}
	g.Go(func() error {
		address := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
		logger.LogSystem("Starting API server", slog.String("address", address))
		return app.Listen(address)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.LogSystem("Shutting down API server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.LogSystem("Shutdown complete")
	return nil
}
