package app

import (
	"context"
	"time"

	"stoppilot/internal/gateway/broker"
	"stoppilot/internal/indicator"
	"stoppilot/internal/logger"
	symbolpkg "stoppilot/internal/pkg/symbol"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// signalConcurrency bounds parallel bar fetches per tick.
const signalConcurrency = 4

func (a *App) signalTick(ctx context.Context) {
	traceID := uuid.NewString()
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(signalConcurrency)
	for _, raw := range a.cfg.Market.Symbols {
		sym := symbolpkg.Normalize(raw)
		if sym == "" {
			continue
		}
		group.Go(func() error {
			a.processSymbol(gctx, traceID, sym)
			return nil
		})
	}
	_ = group.Wait()
}

func (a *App) processSymbol(ctx context.Context, traceID, sym string) {
	timeframe := a.cfg.Market.Timeframe
	lookback := a.cfg.Market.LookbackBars

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Broker.Timeout())
	bars, err := a.gateway.GetBars(callCtx, sym, timeframe, lookback)
	cancel()
	if err != nil {
		if broker.IsNoData(err) {
			logger.Warnf("signal: no bar data for %s, skipping cycle", sym)
		} else {
			logger.Errorf("signal: fetching bars for %s failed: %v", sym, err)
		}
		return
	}

	if err := a.bars.Put(ctx, sym, timeframe, bars, lookback); err != nil {
		logger.Errorf("signal: caching bars for %s failed: %v", sym, err)
		return
	}
	window, err := a.bars.Get(ctx, sym, timeframe)
	if err != nil {
		logger.Errorf("signal: reading bar cache for %s failed: %v", sym, err)
		return
	}

	snap := indicator.Compute(sym, window, a.settings)
	sig := a.scorer.Score(snap)
	a.signals.Put(sig)
	logger.Infof("signal: %s score=%d action=%s quality=%s (bars=%d)",
		sym, sig.Score, sig.Action, sig.Quality, snap.BarCount)

	if err := a.journal.AppendSignal(ctx, traceID, sig); err != nil {
		logger.Warnf("signal: journaling %s failed: %v", sym, err)
	}
}

func (a *App) riskTick(ctx context.Context) {
	traceID := uuid.NewString()

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Risk.GatewayTimeout())
	positions, err := a.gateway.GetOpenPositions(callCtx)
	cancel()
	if err != nil {
		// Keep all tracked state; a transient gateway failure must not look
		// like closed tickets.
		logger.Errorf("risk: fetching open positions failed: %v", err)
		return
	}

	for _, pos := range positions {
		a.refreshPrice(ctx, &pos)
		for _, d := range a.executor.Process(ctx, pos) {
			if err := a.journal.AppendRiskAction(ctx, traceID, d, time.Now()); err != nil {
				logger.Warnf("risk: journaling action for ticket %s failed: %v", d.Ticket, err)
			}
		}
	}

	if purged := a.tracker.Reconcile(positions); len(purged) > 0 {
		logger.Infof("risk: purged state for closed tickets %v", purged)
	}
}

// refreshPrice updates the position's current price from the live quote,
// using the side a close would execute at. Missing quotes fall back to the
// price the position snapshot carried.
func (a *App) refreshPrice(ctx context.Context, pos *broker.Position) {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Risk.GatewayTimeout())
	quote, err := a.gateway.GetQuote(callCtx, pos.Symbol)
	cancel()
	if err != nil {
		if !broker.IsNoData(err) {
			logger.Warnf("risk: quote for %s failed: %v", pos.Symbol, err)
		}
		return
	}
	if pos.Direction == broker.Long && quote.Bid > 0 {
		pos.CurrentPrice = quote.Bid
	} else if pos.Direction == broker.Short && quote.Ask > 0 {
		pos.CurrentPrice = quote.Ask
	}
}
