package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stoppilot/internal/indicator"
)

func TestScoreStrongBuyScenario(t *testing.T) {
	// RSI 25, band position 0.05, bullish trend, bullish MACD, positive
	// momentum, elevated volatility: 20+25+15+15+15+5 = 95.
	snap := indicator.Snapshot{
		Symbol:   "EURUSD",
		Close:    1.1000,
		RSI:      25,
		SMAFast:  1.0990,
		SMASlow:  1.0950,
		Bollinger: indicator.Bollinger{
			Upper:    1.1100,
			Middle:   1.1050,
			Lower:    1.0995,
			Position: 0.05,
		},
		MACD:       indicator.MACD{Value: 0.0004, Bullish: true},
		Momentum:   indicator.Momentum{Value: 0.002, Positive: true},
		Volatility: indicator.Volatility{ATRPct: 1.4, High: true},
	}

	sig := NewScorer(DefaultThresholds()).Score(snap)

	assert.Equal(t, 95, sig.Score)
	assert.Equal(t, 95, sig.Confidence)
	assert.Equal(t, ActionBuy, sig.Action)
	assert.Equal(t, QualityExcellent, sig.Quality)
}

func TestScoreClampsToBounds(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())

	bearish := indicator.Snapshot{
		Symbol:  "EURUSD",
		Close:   1.1300,
		RSI:     92,
		SMAFast: 1.1000,
		SMASlow: 1.1100,
		Bollinger: indicator.Bollinger{
			Position: 0.99,
			Squeeze:  false,
		},
		MACD:     indicator.MACD{Value: -0.001, Bullish: false},
		Momentum: indicator.Momentum{Value: -0.004, Positive: false},
	}
	sig := scorer.Score(bearish)
	// -20 -25 -15 -10 -15 -15 = -100; anything harsher still clamps.
	assert.GreaterOrEqual(t, sig.Score, -100)
	assert.LessOrEqual(t, sig.Score, 100)
	assert.Equal(t, ActionSell, sig.Action)
	assert.Equal(t, QualityExcellent, sig.Quality)
}

func TestScoreBoundsAcrossGrid(t *testing.T) {
	scorer := NewScorer(DefaultThresholds())
	for _, rsi := range []float64{0, 25, 35, 50, 65, 75, 100} {
		for _, pos := range []float64{0, 0.05, 0.15, 0.5, 0.85, 0.95, 1} {
			for _, macd := range []float64{-1, 0, 1} {
				snap := indicator.Snapshot{
					Symbol:    "EURUSD",
					Close:     1.2,
					RSI:       rsi,
					SMAFast:   1.19,
					SMASlow:   1.21,
					Bollinger: indicator.Bollinger{Position: pos, Squeeze: pos < 0.1},
					MACD:      indicator.MACD{Value: macd, Bullish: macd > 0},
					Momentum:  indicator.Momentum{Value: macd, Positive: macd > 0},
					Volatility: indicator.Volatility{
						ATRPct: 2,
						High:   true,
					},
				}
				sig := scorer.Score(snap)
				assert.GreaterOrEqual(t, sig.Score, -100)
				assert.LessOrEqual(t, sig.Score, 100)
				assert.Equal(t, abs(sig.Score), sig.Confidence)
			}
		}
	}
}

func TestNeutralSnapshotScoresZero(t *testing.T) {
	// Short-history fallback snapshot: every contribution should be zero.
	snap := indicator.Snapshot{
		Symbol:    "EURUSD",
		RSI:       50,
		Bollinger: indicator.Bollinger{Position: 0.5},
	}
	sig := NewScorer(DefaultThresholds()).Score(snap)
	assert.Zero(t, sig.Score)
	assert.Equal(t, ActionNoTrade, sig.Action)
	assert.Equal(t, QualityWeak, sig.Quality)
	assert.Empty(t, sig.Reasons)
}

func TestActionThresholdsAreConfigurable(t *testing.T) {
	snap := indicator.Snapshot{
		Symbol:    "EURUSD",
		RSI:       35, // +10
		Bollinger: indicator.Bollinger{Position: 0.5},
	}

	strict := NewScorer(Thresholds{BuyScore: 20, SellScore: -20})
	assert.Equal(t, ActionNoTrade, strict.Score(snap).Action)

	loose := NewScorer(Thresholds{BuyScore: 0, SellScore: 0})
	assert.Equal(t, ActionBuy, loose.Score(snap).Action)
}

func TestOverextensionPenalty(t *testing.T) {
	snap := indicator.Snapshot{
		Symbol:    "EURUSD",
		RSI:       50,
		Close:     1.2300,
		SMAFast:   1.2000,
		SMASlow:   1.1900,
		Bollinger: indicator.Bollinger{Position: 0.5},
	}
	// trend bullish +15, price 2.5% above fast SMA -10 => 5
	sig := NewScorer(DefaultThresholds()).Score(snap)
	assert.Equal(t, 5, sig.Score)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
