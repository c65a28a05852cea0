package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/feed"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/server"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/server/handler"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/server/ws"
	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/service"
)

// shutdownTimeout bounds graceful HTTP server shutdown.
const shutdownTimeout = 10 * time.Second

// EvaluateMode runs the full evaluation stack without the HTTP API: the market
// feed, the price-driven feeder, the interval evaluation loop, and (when
// enabled) the archive runner.
func (a *App) EvaluateMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting evaluate mode")

	g, gctx := errgroup.WithContext(ctx)

	marketFeed := a.newMarketFeed(deps)
	g.Go(func() error { return marketFeed.Run(gctx) })

	evalSvc := a.newEvaluationService(deps)
	feeder := feed.NewEvaluationFeeder(deps.SignalBus, evalSvc, a.logger)
	g.Go(func() error { return feeder.Run(gctx) })
	g.Go(func() error { return evalSvc.Run(gctx) })

	if deps.Archiver != nil {
		runner := service.NewArchiveRunner(
			deps.Archiver,
			a.cfg.Archive.Interval.Duration,
			a.cfg.Archive.RetentionDays,
			a.logger,
		)
		g.Go(func() error { return runner.Run(gctx) })
	}

	return g.Wait()
}

// MonitorMode runs only the market feed: prices are cached and published on
// the bus for external consumers, but no evaluation happens.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	marketFeed := a.newMarketFeed(deps)
	return marketFeed.Run(ctx)
}

// ServerMode runs only the HTTP + WebSocket API over already-persisted data.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, gctx := errgroup.WithContext(ctx)
	a.startServer(gctx, g, deps)
	return g.Wait()
}

// FullMode runs everything: feed, evaluation, archival, and the API server.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, gctx := errgroup.WithContext(ctx)

	marketFeed := a.newMarketFeed(deps)
	g.Go(func() error { return marketFeed.Run(gctx) })

	evalSvc := a.newEvaluationService(deps)
	feeder := feed.NewEvaluationFeeder(deps.SignalBus, evalSvc, a.logger)
	g.Go(func() error { return feeder.Run(gctx) })
	g.Go(func() error { return evalSvc.Run(gctx) })

	if deps.Archiver != nil {
		runner := service.NewArchiveRunner(
			deps.Archiver,
			a.cfg.Archive.Interval.Duration,
			a.cfg.Archive.RetentionDays,
			a.logger,
		)
		g.Go(func() error { return runner.Run(gctx) })
	}

	if a.cfg.Server.Enabled {
		a.startServer(gctx, g, deps)
	}

	return g.Wait()
}

// newMarketFeed builds the websocket market feed from config.
func (a *App) newMarketFeed(deps *Dependencies) *feed.MarketWSFeed {
	return feed.NewMarketWSFeed(feed.Config{
		WsURL:          a.cfg.Feed.WsURL,
		Symbols:        a.cfg.Feed.Symbols,
		ReconnectDelay: a.cfg.Feed.ReconnectDelay.Duration,
		MaxReconnects:  a.cfg.Feed.MaxReconnects,
		PingInterval:   a.cfg.Feed.PingInterval.Duration,
	}, deps.PriceCache, deps.SignalBus, a.logger)
}

// newEvaluationService builds the evaluation service from config.
func (a *App) newEvaluationService(deps *Dependencies) *service.EvaluationService {
	return service.NewEvaluationService(
		deps.PositionStore,
		deps.TimelineStore,
		deps.DecisionStore,
		deps.SnapshotCache,
		deps.MarketStateCache,
		deps.PriceCache,
		deps.LockManager,
		deps.SignalBus,
		deps.AuditStore,
		deps.Notifier,
		service.Config{
			Interval:      a.cfg.Evaluator.Interval.Duration,
			LockTTL:       a.cfg.Evaluator.LockTTL.Duration,
			MaxConcurrent: a.cfg.Evaluator.MaxConcurrent,
		},
		a.logger,
	)
}

// startServer constructs the API server plus WebSocket hub and registers their
// goroutines, including graceful shutdown when the group context ends.
func (a *App) startServer(gctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		if err := hub.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Positions: handler.NewPositionHandler(deps.PositionStore, deps.TimelineStore, deps.SnapshotCache, a.logger),
		Decisions: handler.NewDecisionHandler(deps.DecisionStore, a.logger),
	}
	if deps.BlobReader != nil {
		handlers.Archives = handler.NewArchiveHandler(deps.BlobReader, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
		return gctx.Err()
	})
}
