package signal

import (
	"fmt"

	"stoppilot/internal/indicator"
)

// Thresholds holds every tunable cut the scorer applies. Kept in config so
// deployments can tighten or loosen without a rebuild.
type Thresholds struct {
	// BuyScore/SellScore gate the action: BUY iff score > BuyScore, SELL iff
	// score < SellScore. Setting both to 0 reproduces the loosest legacy
	// behavior (any non-zero score trades).
	BuyScore  int `mapstructure:"buy_score"`
	SellScore int `mapstructure:"sell_score"`

	// Quality bands on confidence.
	Excellent int `mapstructure:"excellent"`
	Good      int `mapstructure:"good"`
	Fair      int `mapstructure:"fair"`

	// OverextendedPct is the price-vs-fast-SMA distance (percent) beyond
	// which price counts as stretched.
	OverextendedPct float64 `mapstructure:"overextended_pct"`

	RSIOversold     float64 `mapstructure:"rsi_oversold"`
	RSIWeakOversold float64 `mapstructure:"rsi_weak_oversold"`
	RSIOverbought   float64 `mapstructure:"rsi_overbought"`
	RSIWeakOverbought float64 `mapstructure:"rsi_weak_overbought"`

	BandLowStrong  float64 `mapstructure:"band_low_strong"`
	BandLow        float64 `mapstructure:"band_low"`
	BandHigh       float64 `mapstructure:"band_high"`
	BandHighStrong float64 `mapstructure:"band_high_strong"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		BuyScore:          20,
		SellScore:         -20,
		Excellent:         70,
		Good:              60,
		Fair:              40,
		OverextendedPct:   2.0,
		RSIOversold:       30,
		RSIWeakOversold:   40,
		RSIOverbought:     70,
		RSIWeakOverbought: 60,
		BandLowStrong:     0.10,
		BandLow:           0.20,
		BandHigh:          0.80,
		BandHighStrong:    0.90,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if t.Excellent == 0 {
		t.Excellent = def.Excellent
	}
	if t.Good == 0 {
		t.Good = def.Good
	}
	if t.Fair == 0 {
		t.Fair = def.Fair
	}
	if t.OverextendedPct == 0 {
		t.OverextendedPct = def.OverextendedPct
	}
	if t.RSIOversold == 0 {
		t.RSIOversold = def.RSIOversold
	}
	if t.RSIWeakOversold == 0 {
		t.RSIWeakOversold = def.RSIWeakOversold
	}
	if t.RSIOverbought == 0 {
		t.RSIOverbought = def.RSIOverbought
	}
	if t.RSIWeakOverbought == 0 {
		t.RSIWeakOverbought = def.RSIWeakOverbought
	}
	if t.BandLowStrong == 0 {
		t.BandLowStrong = def.BandLowStrong
	}
	if t.BandLow == 0 {
		t.BandLow = def.BandLow
	}
	if t.BandHigh == 0 {
		t.BandHigh = def.BandHigh
	}
	if t.BandHighStrong == 0 {
		t.BandHighStrong = def.BandHighStrong
	}
	return t
}

// Scorer combines indicator contributions into a clamped [-100,100] score.
// Stateless and deterministic; safe for concurrent use.
type Scorer struct {
	cfg Thresholds
}

func NewScorer(cfg Thresholds) *Scorer {
	return &Scorer{cfg: cfg.withDefaults()}
}

// Score converts a snapshot into a signal. Absent or neutral indicator inputs
// contribute zero; the scorer itself never fails.
func (s *Scorer) Score(snap indicator.Snapshot) Signal {
	cfg := s.cfg
	total := 0
	var reasons []string

	add := func(delta int, format string, args ...any) {
		total += delta
		reasons = append(reasons, fmt.Sprintf("%+d %s", delta, fmt.Sprintf(format, args...)))
	}

	switch {
	case snap.RSI < cfg.RSIOversold:
		add(20, "RSI oversold (%.1f)", snap.RSI)
	case snap.RSI < cfg.RSIWeakOversold:
		add(10, "RSI leaning oversold (%.1f)", snap.RSI)
	case snap.RSI > cfg.RSIOverbought:
		add(-20, "RSI overbought (%.1f)", snap.RSI)
	case snap.RSI > cfg.RSIWeakOverbought:
		add(-10, "RSI leaning overbought (%.1f)", snap.RSI)
	}

	bb := snap.Bollinger
	switch {
	case bb.Position < cfg.BandLowStrong:
		add(25, "price at lower band (pos=%.2f)", bb.Position)
	case bb.Position < cfg.BandLow:
		add(20, "price near lower band (pos=%.2f)", bb.Position)
	case bb.Position > cfg.BandHighStrong:
		add(-25, "price at upper band (pos=%.2f)", bb.Position)
	case bb.Position > cfg.BandHigh:
		add(-20, "price near upper band (pos=%.2f)", bb.Position)
	}
	if bb.Squeeze {
		add(10, "band squeeze, breakout pending")
	}

	if snap.SMAFast > 0 && snap.SMASlow > 0 {
		if snap.SMAFast > snap.SMASlow {
			add(15, "trend bullish, fast SMA above slow")
		} else if snap.SMAFast < snap.SMASlow {
			add(-15, "trend bearish, fast SMA below slow")
		}
	}

	if snap.SMAFast > 0 && snap.Close > 0 {
		distPct := (snap.Close - snap.SMAFast) / snap.SMAFast * 100
		if distPct > cfg.OverextendedPct {
			add(-10, "overextended %.1f%% above fast SMA", distPct)
		} else if distPct < -cfg.OverextendedPct {
			add(10, "discount %.1f%% below fast SMA", distPct)
		}
	}

	if snap.MACD.Value != 0 {
		if snap.MACD.Bullish {
			add(15, "MACD bullish (%.5f)", snap.MACD.Value)
		} else {
			add(-15, "MACD bearish (%.5f)", snap.MACD.Value)
		}
	}

	if snap.Momentum.Value != 0 {
		if snap.Momentum.Positive {
			add(15, "momentum positive (%.5f)", snap.Momentum.Value)
		} else {
			add(-15, "momentum negative (%.5f)", snap.Momentum.Value)
		}
	}

	if snap.Volatility.High {
		add(5, "volatility elevated (ATR %.2f%%)", snap.Volatility.ATRPct)
	}

	score := clamp(total, -100, 100)
	confidence := score
	if confidence < 0 {
		confidence = -confidence
	}

	return Signal{
		Symbol:      snap.Symbol,
		Score:       score,
		Confidence:  confidence,
		Action:      s.action(score),
		Quality:     s.quality(confidence),
		Reasons:     reasons,
		GeneratedAt: snap.At,
	}
}

func (s *Scorer) action(score int) Action {
	switch {
	case score > s.cfg.BuyScore:
		return ActionBuy
	case score < s.cfg.SellScore:
		return ActionSell
	default:
		return ActionNoTrade
	}
}

func (s *Scorer) quality(confidence int) Quality {
	switch {
	case confidence >= s.cfg.Excellent:
		return QualityExcellent
	case confidence >= s.cfg.Good:
		return QualityGood
	case confidence >= s.cfg.Fair:
		return QualityFair
	default:
		return QualityWeak
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
