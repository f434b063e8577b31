package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stoppilot/internal/market"
)

func barsFromCloses(closes []float64) []market.Bar {
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{
			OpenTime: int64(i) * 60_000,
			Open:     c,
			High:     c * 1.001,
			Low:      c * 0.999,
			Close:    c,
		}
	}
	return out
}

func TestComputeShortHistoryFallsBackNeutral(t *testing.T) {
	bars := barsFromCloses([]float64{1.10, 1.101, 1.102, 1.101, 1.103})

	snap := Compute("EURUSD", bars, Settings{})

	assert.Equal(t, 5, snap.BarCount)
	assert.Equal(t, 50.0, snap.RSI)
	assert.Equal(t, 0.5, snap.Bollinger.Position)
	assert.False(t, snap.Bollinger.Squeeze)
	assert.Zero(t, snap.Momentum.Value)
	assert.Zero(t, snap.MACD.Value)
	assert.Zero(t, snap.Volatility.ATRPct)
}

func TestComputeEmptyWindow(t *testing.T) {
	snap := Compute("EURUSD", nil, Settings{})
	assert.Equal(t, 50.0, snap.RSI)
	assert.Equal(t, 0.5, snap.Bollinger.Position)
	assert.Zero(t, snap.Close)
}

func TestComputeUptrend(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 1.10 + float64(i)*0.001
	}
	snap := Compute("EURUSD", barsFromCloses(closes), Settings{})

	assert.Greater(t, snap.RSI, 50.0)
	assert.Greater(t, snap.SMAFast, snap.SMASlow, "fast SMA leads slow SMA in an uptrend")
	assert.True(t, snap.MACD.Bullish)
	assert.True(t, snap.Momentum.Positive)
	assert.InDelta(t, 0.010, snap.Momentum.Value, 1e-9)
	// Top of the band in a steady climb.
	assert.Greater(t, snap.Bollinger.Position, 0.8)
	assert.Greater(t, snap.Volatility.ATR, 0.0)
}

func TestComputeDowntrend(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 1.30 - float64(i)*0.001
	}
	snap := Compute("EURUSD", barsFromCloses(closes), Settings{})

	assert.Less(t, snap.RSI, 50.0)
	assert.False(t, snap.MACD.Bullish)
	assert.False(t, snap.Momentum.Positive)
	assert.Less(t, snap.Bollinger.Position, 0.2)
}

func TestBandPositionClamps(t *testing.T) {
	assert.Equal(t, 0.0, bandPosition(0.9, 1.2, 1.0))
	assert.Equal(t, 1.0, bandPosition(1.3, 1.2, 1.0))
	assert.Equal(t, 0.5, bandPosition(1.1, 1.0, 1.0))
	assert.InDelta(t, 0.5, bandPosition(1.1, 1.2, 1.0), 1e-9)
}

func TestComputeFlatSeriesSqueezes(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 1.2000
	}
	snap := Compute("EURUSD", barsFromCloses(closes), Settings{})
	assert.True(t, snap.Bollinger.Squeeze)
}
