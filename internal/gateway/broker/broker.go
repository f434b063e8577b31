// Package broker defines the contract against the trading gateway that owns
// quotes, bars and open positions. Concrete backends (binance futures today)
// implement Gateway; the risk core never talks to an exchange SDK directly.
package broker

import (
	"context"

	"stoppilot/internal/market"
)

// Direction is the side of an open position.
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Sign returns +1 for long and -1 for short, used when shifting stop levels.
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

// Position is a read-only snapshot of a broker-side position. The broker owns
// the lifecycle; this process only ever adjusts its stop levels.
type Position struct {
	Ticket       string
	Symbol       string
	Direction    Direction
	Volume       float64
	OpenPrice    float64
	CurrentPrice float64
	StopLoss     float64 // 0 when no stop is set
	TakeProfit   float64 // 0 when no take-profit is set
	Profit       float64 // unrealized, in account currency
}

// Gateway is the full surface this system consumes from the broker. Every
// call is synchronous; callers bound it with a context deadline and treat a
// timeout as a soft failure for the current cycle.
type Gateway interface {
	// GetQuote returns the current top-of-book. Fails with *NoDataError when
	// the symbol has no quote available.
	GetQuote(ctx context.Context, symbol string) (market.Quote, error)

	// GetBars returns up to count most recent bars for the timeframe, oldest
	// first. Fewer bars than requested is not an error.
	GetBars(ctx context.Context, symbol, timeframe string, count int) ([]market.Bar, error)

	// GetOpenPositions returns all open positions. Empty slice, never nil,
	// when nothing is open.
	GetOpenPositions(ctx context.Context) ([]Position, error)

	// ModifyStopLevels replaces the stop-loss/take-profit attached to the
	// ticket. Atomic from the caller's perspective: either both levels are in
	// place afterwards or the call failed with *RejectError.
	ModifyStopLevels(ctx context.Context, ticket string, stopLoss, takeProfit float64) error
}
