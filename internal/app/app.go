// Package app wires configuration into running services: the signal loop, the
// risk loop and the optional status HTTP server.
package app

import (
	"context"
	"fmt"

	"stoppilot/internal/config"
	"stoppilot/internal/gateway/broker"
	"stoppilot/internal/indicator"
	"stoppilot/internal/logger"
	"stoppilot/internal/market"
	"stoppilot/internal/risk"
	"stoppilot/internal/scheduler"
	"stoppilot/internal/signal"
	"stoppilot/internal/store/journal"
	statushttp "stoppilot/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg *config.Config

	gateway  broker.Gateway
	bars     *market.MemoryBarStore
	settings indicator.Settings
	scorer   *signal.Scorer
	signals  *signal.Cache

	tracker  *risk.Tracker
	executor *risk.Executor

	journal      journal.Journal
	journalStore *journal.Store

	httpSrv *statushttp.Server
}

// NewApp builds the application from config without starting anything.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return build(cfg)
}

// Run starts both loops and the HTTP server, blocking until the context is
// cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	defer a.Close()

	group, ctx := errgroup.WithContext(ctx)

	if a.httpSrv != nil {
		group.Go(func() error {
			logger.Infof("status http listening on %s", a.httpSrv.Addr())
			if err := a.httpSrv.Start(ctx); err != nil {
				return fmt.Errorf("status http server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		loop := scheduler.NewLoop(ctx, "signal", a.cfg.Market.Interval())
		loop.RunImmediately = true
		loop.Start(a.signalTick)
		return nil
	})

	group.Go(func() error {
		loop := scheduler.NewLoop(ctx, "risk", a.cfg.Risk.Interval())
		loop.RunImmediately = true
		loop.Start(a.riskTick)
		return nil
	})

	return group.Wait()
}

// Close releases owned resources. Safe to call more than once.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.journalStore != nil {
		if err := a.journalStore.Close(); err != nil {
			logger.Warnf("journal close failed: %v", err)
		}
	}
}
