// Package indicator turns a rolling bar window into one snapshot of the
// technical indicators the scorer consumes. Computation is a pure function of
// the window; short history degrades to neutral values per indicator instead
// of failing the snapshot.
package indicator

import (
	"math"
	"time"

	"github.com/markcheno/go-talib"

	"stoppilot/internal/market"
)

// Settings parameterizes the indicator bundle. Zero values fall back to the
// conventional periods.
type Settings struct {
	RSIPeriod      int     `mapstructure:"rsi_period"`
	SMAFast        int     `mapstructure:"sma_fast"`
	SMASlow        int     `mapstructure:"sma_slow"`
	EMAFast        int     `mapstructure:"ema_fast"`
	EMASlow        int     `mapstructure:"ema_slow"`
	BollPeriod     int     `mapstructure:"boll_period"`
	BollStdDev     float64 `mapstructure:"boll_stddev"`
	MomentumPeriod int     `mapstructure:"momentum_period"`
	ATRPeriod      int     `mapstructure:"atr_period"`
	// SqueezeRatio is the (upper-lower)/middle band width below which the
	// market counts as squeezed.
	SqueezeRatio float64 `mapstructure:"squeeze_ratio"`
	// HighVolPct is the ATR-as-percent-of-price threshold above which
	// volatility counts as high.
	HighVolPct float64 `mapstructure:"high_vol_pct"`
}

func (s Settings) withDefaults() Settings {
	if s.RSIPeriod <= 0 {
		s.RSIPeriod = 14
	}
	if s.SMAFast <= 0 {
		s.SMAFast = 20
	}
	if s.SMASlow <= 0 {
		s.SMASlow = 50
	}
	if s.EMAFast <= 0 {
		s.EMAFast = 12
	}
	if s.EMASlow <= 0 {
		s.EMASlow = 26
	}
	if s.BollPeriod <= 0 {
		s.BollPeriod = 20
	}
	if s.BollStdDev <= 0 {
		s.BollStdDev = 2
	}
	if s.MomentumPeriod <= 0 {
		s.MomentumPeriod = 10
	}
	if s.ATRPeriod <= 0 {
		s.ATRPeriod = 14
	}
	if s.SqueezeRatio <= 0 {
		s.SqueezeRatio = 0.02
	}
	if s.HighVolPct <= 0 {
		s.HighVolPct = 1.0
	}
	return s
}

// Bollinger describes band levels and where price sits inside them.
// Position is clamped to [0,1]: 0 at the lower band, 1 at the upper.
type Bollinger struct {
	Upper    float64 `json:"upper"`
	Middle   float64 `json:"middle"`
	Lower    float64 `json:"lower"`
	Position float64 `json:"position"`
	Squeeze  bool    `json:"squeeze"`
}

type MACD struct {
	Value   float64 `json:"value"`
	Bullish bool    `json:"bullish"`
}

type Momentum struct {
	Value    float64 `json:"value"`
	Positive bool    `json:"positive"`
}

type Volatility struct {
	ATR    float64 `json:"atr"`
	ATRPct float64 `json:"atr_pct"`
	High   bool    `json:"high"`
}

// Snapshot is the full indicator bundle for one instrument at one evaluation
// time. Immutable once produced.
type Snapshot struct {
	Symbol     string     `json:"symbol"`
	Close      float64    `json:"close"`
	RSI        float64    `json:"rsi"`
	SMAFast    float64    `json:"sma_fast"`
	SMASlow    float64    `json:"sma_slow"`
	Bollinger  Bollinger  `json:"bollinger"`
	MACD       MACD       `json:"macd"`
	Momentum   Momentum   `json:"momentum"`
	Volatility Volatility `json:"volatility"`
	BarCount   int        `json:"bar_count"`
	At         time.Time  `json:"at"`
}

// Compute builds a snapshot from the bar window, oldest bar first. Indicators
// whose lookback exceeds the window fall back to neutral placeholders.
func Compute(symbol string, bars []market.Bar, cfg Settings) Snapshot {
	cfg = cfg.withDefaults()
	snap := Snapshot{
		Symbol:   symbol,
		RSI:      50,
		BarCount: len(bars),
		At:       time.Now().UTC(),
		Bollinger: Bollinger{
			Position: 0.5,
		},
	}
	if len(bars) == 0 {
		return snap
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}
	lastClose := closes[len(closes)-1]
	snap.Close = lastClose

	if len(closes) > cfg.RSIPeriod {
		snap.RSI = lastValid(talib.Rsi(closes, cfg.RSIPeriod), 50)
	}

	if len(closes) >= cfg.SMAFast {
		snap.SMAFast = lastValid(talib.Sma(closes, cfg.SMAFast), 0)
	}
	if len(closes) >= cfg.SMASlow {
		snap.SMASlow = lastValid(talib.Sma(closes, cfg.SMASlow), 0)
	}

	if len(closes) >= cfg.BollPeriod {
		upper, middle, lower := talib.BBands(closes, cfg.BollPeriod, cfg.BollStdDev, cfg.BollStdDev, talib.SMA)
		u := lastValid(upper, 0)
		m := lastValid(middle, 0)
		l := lastValid(lower, 0)
		snap.Bollinger = Bollinger{
			Upper:    u,
			Middle:   m,
			Lower:    l,
			Position: bandPosition(lastClose, u, l),
			Squeeze:  m > 0 && (u-l)/m < cfg.SqueezeRatio,
		}
	}

	if len(closes) >= cfg.EMASlow {
		fast := lastValid(talib.Ema(closes, cfg.EMAFast), 0)
		slow := lastValid(talib.Ema(closes, cfg.EMASlow), 0)
		value := fast - slow
		snap.MACD = MACD{Value: value, Bullish: value > 0}
	}

	if len(closes) > cfg.MomentumPeriod {
		value := lastClose - closes[len(closes)-1-cfg.MomentumPeriod]
		snap.Momentum = Momentum{Value: value, Positive: value > 0}
	}

	if len(closes) > cfg.ATRPeriod {
		atr := lastValid(talib.Atr(highs, lows, closes, cfg.ATRPeriod), 0)
		pct := 0.0
		if lastClose > 0 {
			pct = atr / lastClose * 100
		}
		snap.Volatility = Volatility{ATR: atr, ATRPct: pct, High: pct > cfg.HighVolPct}
	}

	return snap
}

// bandPosition places close inside [lower, upper], clamped to [0,1]. A
// degenerate band (upper == lower) is neutral.
func bandPosition(close, upper, lower float64) float64 {
	width := upper - lower
	if width <= 0 {
		return 0.5
	}
	pos := (close - lower) / width
	if pos < 0 {
		return 0
	}
	if pos > 1 {
		return 1
	}
	return pos
}

func lastValid(series []float64, fallback float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		v := series[i]
		if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
			continue
		}
		return v
	}
	return fallback
}
