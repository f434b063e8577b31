package risk

import "stoppilot/internal/gateway/broker"

// ProfitPips normalizes the open-to-current price move into pips, positive
// when the position is in profit.
func ProfitPips(dir broker.Direction, openPrice, currentPrice, point float64) float64 {
	if point <= 0 {
		return 0
	}
	delta := currentPrice - openPrice
	if dir == broker.Short {
		delta = openPrice - currentPrice
	}
	return delta / point
}
