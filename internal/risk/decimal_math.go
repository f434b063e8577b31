package risk

import (
	"math"

	"github.com/shopspring/decimal"

	"stoppilot/internal/gateway/broker"
)

// Stop comparisons go through decimals: pip offsets on 5-digit FX prices sit
// right at float64 noise level, and a stop must never be judged "improved" on
// rounding error alone.

var decimalEps = decimal.NewFromFloat(1e-9)

func decFromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// moreFavorable reports whether candidate is strictly better protection than
// current for the given direction. A zero current means no stop is set, so
// any candidate qualifies.
func moreFavorable(dir broker.Direction, candidate, current float64) bool {
	if candidate <= 0 {
		return false
	}
	if current <= 0 {
		return true
	}
	cand := decFromFloat(candidate)
	curr := decFromFloat(current)
	if dir == broker.Short {
		return cand.Cmp(curr.Sub(decimalEps)) < 0
	}
	return cand.Cmp(curr.Add(decimalEps)) > 0
}

// improvement returns how far candidate moves the stop in the position's
// favor relative to current, in price units. Zero or negative means no
// improvement.
func improvement(dir broker.Direction, candidate, current float64) float64 {
	if candidate <= 0 {
		return 0
	}
	if current <= 0 {
		return math.Inf(1)
	}
	cand := decFromFloat(candidate)
	curr := decFromFloat(current)
	var diff decimal.Decimal
	if dir == broker.Short {
		diff = curr.Sub(cand)
	} else {
		diff = cand.Sub(curr)
	}
	f, _ := diff.Float64()
	return f
}

// shiftPips moves a price by pips in the stated direction's favorable sense
// for a protective stop: positive pips push the stop further behind price.
func shiftPips(price float64, pips, point float64, sign float64) float64 {
	p := decFromFloat(price)
	delta := decFromFloat(pips * point * sign)
	f, _ := p.Add(delta).Float64()
	return f
}
