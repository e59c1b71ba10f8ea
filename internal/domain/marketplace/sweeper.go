package marketplace

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fantasyrun/runner-market/internal/config"
)

// Sweeper runs the periodic maintenance the request path never waits for.
type Sweeper struct {
	service  Service
	interval time.Duration
}

type SweepResult struct {
	Expired    int
	Reconciled int
}

func NewSweeper(service Service, interval time.Duration) *Sweeper {
	if service == nil {
		panic("marketplace service cannot be nil")
	}
	if interval <= 0 {
		interval = config.DefaultSweepInterval
	}
	return &Sweeper{service: service, interval: interval}
}

// SweepOnce expires lapsed listings and replays orphaned settlements concurrently.
func (s *Sweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.service.ExpireListings(ctx)
		result.Expired = n
		return err
	})
	g.Go(func() error {
		n, err := s.service.ReconcileOrphans(ctx)
		result.Reconciled = n
		return err
	})
	err := g.Wait()
	return result, err
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("Marketplace sweeper started",
		slog.String("type", "sys"),
		slog.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Marketplace sweeper stopped", slog.String("type", "sys"))
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, config.BatchQueryTimeout)
			result, err := s.SweepOnce(runCtx)
			cancel()
			if err != nil {
				slog.Error("Marketplace sweep failed",
					slog.String("type", "mkt"),
					slog.Any("error", err))
				continue
			}
			if result.Expired > 0 || result.Reconciled > 0 {
				slog.Info("Marketplace sweep finished",
					slog.String("type", "mkt"),
					slog.Int("expired", result.Expired),
					slog.Int("reconciled", result.Reconciled))
			}
		}
	}
}
