package market

import "time"

const defaultCloseGrace = 10 * time.Second

// DropUnclosedBar drops the last bar if it is still in progress. Exchange
// kline endpoints return the current, not-yet-closed candle as the final
// element; scoring on it produces unstable indicator values.
func DropUnclosedBar(bars []Bar, interval time.Duration) []Bar {
	return dropUnclosedBarAt(bars, interval, time.Now().UTC(), defaultCloseGrace)
}

func dropUnclosedBarAt(bars []Bar, interval time.Duration, now time.Time, grace time.Duration) []Bar {
	if len(bars) == 0 || interval <= 0 {
		return bars
	}
	if grace < 0 {
		grace = 0
	}
	last := bars[len(bars)-1]
	if last.OpenTime <= 0 {
		return bars
	}
	closeTimeMs := last.OpenTime + interval.Milliseconds()
	cutoffMs := closeTimeMs + grace.Milliseconds()
	if now.UnixMilli() < cutoffMs {
		return bars[:len(bars)-1]
	}
	return bars
}
