package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stoppilot/internal/gateway/broker"
)

func testProfiles() StaticProfiles {
	return StaticProfiles{
		Default: Profile{
			BreakevenTriggerPips: 15,
			BreakevenOffsetPips:  3,
			TrailingTriggerPips:  20,
			TrailingDistancePips: 12,
			MinTrailingStepPips:  5,
		},
	}
}

func longPosition(current, stop float64) broker.Position {
	return broker.Position{
		Ticket:       "100045",
		Symbol:       "EURUSD",
		Direction:    broker.Long,
		OpenPrice:    1.1000,
		CurrentPrice: current,
		StopLoss:     stop,
	}
}

func TestBreakevenTriggersAtConfiguredProfit(t *testing.T) {
	tr := NewTracker(testProfiles())

	// 20 pips in profit, trigger is 15: breakeven at open + 3 pips.
	decisions := tr.Evaluate(longPosition(1.1020, 0))
	require.Len(t, decisions, 1)
	d := decisions[0]
	assert.Equal(t, KindBreakeven, d.Kind)
	assert.InDelta(t, 1.1003, d.NewStop, 1e-9)
	assert.InDelta(t, 20, d.ProfitPips, 1e-6)
}

func TestBreakevenBelowTriggerDoesNothing(t *testing.T) {
	tr := NewTracker(testProfiles())
	assert.Empty(t, tr.Evaluate(longPosition(1.1010, 0))) // 10 pips < 15
}

func TestBreakevenAppliedExactlyOnce(t *testing.T) {
	tr := NewTracker(testProfiles())
	pos := longPosition(1.1020, 0)

	first := tr.Evaluate(pos)
	require.Len(t, first, 1)
	tr.Confirm(first[0])

	// Same conditions re-evaluated any number of times: latched.
	for i := 0; i < 5; i++ {
		assert.Empty(t, tr.Evaluate(longPosition(1.1020, 1.1003)))
	}
}

func TestBreakevenUnconfirmedRetriesNextCycle(t *testing.T) {
	tr := NewTracker(testProfiles())
	pos := longPosition(1.1020, 0)

	first := tr.Evaluate(pos)
	require.Len(t, first, 1)
	// Gateway rejected: no Confirm. The next cycle proposes it again.
	second := tr.Evaluate(pos)
	require.Len(t, second, 1)
	assert.Equal(t, KindBreakeven, second[0].Kind)
}

func TestBreakevenNeverLoosensExistingStop(t *testing.T) {
	tr := NewTracker(testProfiles())
	// Stop already at 1.1010, better than the 1.1003 breakeven level.
	assert.Empty(t, tr.Evaluate(longPosition(1.1020, 1.1010)))
}

func TestBreakevenShortDirection(t *testing.T) {
	tr := NewTracker(testProfiles())
	pos := broker.Position{
		Ticket:       "200010",
		Symbol:       "EURUSD",
		Direction:    broker.Short,
		OpenPrice:    1.1000,
		CurrentPrice: 1.0980, // 20 pips in profit
	}
	decisions := tr.Evaluate(pos)
	require.Len(t, decisions, 1)
	assert.Equal(t, KindBreakeven, decisions[0].Kind)
	assert.InDelta(t, 1.0997, decisions[0].NewStop, 1e-9) // open - 3 pips
}

func TestTrailingScenario(t *testing.T) {
	tr := NewTracker(testProfiles())

	// 30 pips profit, prior stop at breakeven 1.1003. Candidate is
	// 1.1030 - 12 pips = 1.1018; improvement 15 pips >= 5 pip step.
	bd := tr.Evaluate(longPosition(1.1020, 0))
	require.Len(t, bd, 1)
	tr.Confirm(bd[0])

	decisions := tr.Evaluate(longPosition(1.1030, 1.1003))
	require.Len(t, decisions, 1)
	d := decisions[0]
	assert.Equal(t, KindTrailing, d.Kind)
	assert.InDelta(t, 1.1018, d.NewStop, 1e-9)
	tr.Confirm(d)
}

func TestTrailingStepGuard(t *testing.T) {
	tr := NewTracker(testProfiles())

	d := tr.Evaluate(longPosition(1.1030, 1.1003))
	require.Len(t, d, 1)
	tr.Confirm(d[0]) // trailing floor now 1.1018

	// Price creeps 3 more pips: candidate 1.1021, improvement 3 < 5 step.
	assert.Empty(t, tr.Evaluate(longPosition(1.1033, 1.1018)))

	// Price moves 6 more pips: candidate 1.1024, improvement 6 >= 5.
	next := tr.Evaluate(longPosition(1.1036, 1.1018))
	require.Len(t, next, 1)
	assert.InDelta(t, 1.1024, next[0].NewStop, 1e-9)
}

func TestTrailingMonotonicLong(t *testing.T) {
	tr := NewTracker(testProfiles())

	prices := []float64{1.1030, 1.1045, 1.1025, 1.1060, 1.1010, 1.1080}
	lastStop := 0.0
	for _, price := range prices {
		for _, d := range tr.Evaluate(longPosition(price, lastStop)) {
			if d.Kind != KindTrailing {
				continue
			}
			assert.Greater(t, d.NewStop, lastStop, "stop must only ever rise for a long")
			tr.Confirm(d)
			lastStop = d.NewStop
		}
	}
	// Price retreats never produced a decision that lowered the stop.
	assert.Greater(t, lastStop, 1.1003)
}

func TestTrailingMonotonicShort(t *testing.T) {
	tr := NewTracker(testProfiles())
	pos := func(current, stop float64) broker.Position {
		return broker.Position{
			Ticket:       "300077",
			Symbol:       "EURUSD",
			Direction:    broker.Short,
			OpenPrice:    1.2000,
			CurrentPrice: current,
			StopLoss:     stop,
		}
	}

	prices := []float64{1.1970, 1.1955, 1.1980, 1.1940, 1.1990, 1.1920}
	lastStop := 0.0
	for _, price := range prices {
		for _, d := range tr.Evaluate(pos(price, lastStop)) {
			if d.Kind != KindTrailing {
				continue
			}
			if lastStop > 0 {
				assert.Less(t, d.NewStop, lastStop, "stop must only ever fall for a short")
			}
			tr.Confirm(d)
			lastStop = d.NewStop
		}
	}
	assert.Greater(t, lastStop, 0.0)
}

func TestTrailingFloorGuardsStaleBrokerStop(t *testing.T) {
	tr := NewTracker(testProfiles())

	d := tr.Evaluate(longPosition(1.1040, 0))
	var trail *Decision
	for i := range d {
		if d[i].Kind == KindTrailing {
			trail = &d[i]
		}
	}
	require.NotNil(t, trail)
	tr.Confirm(*trail) // floor = 1.1028

	// Broker reports a looser stop than the confirmed floor; candidate
	// 1.1030 barely beats the broker stop but only improves the floor by
	// 2 pips, below the 5 pip step.
	assert.Empty(t, tr.Evaluate(longPosition(1.1042, 1.1003)))
}

func TestBreakevenAndTrailingSameTick(t *testing.T) {
	tr := NewTracker(testProfiles())

	// 40 pips profit with no stop: both checks fire on the same snapshot.
	decisions := tr.Evaluate(longPosition(1.1040, 0))
	require.Len(t, decisions, 2)
	assert.Equal(t, KindBreakeven, decisions[0].Kind)
	assert.Equal(t, KindTrailing, decisions[1].Kind)
	assert.InDelta(t, 1.1003, decisions[0].NewStop, 1e-9)
	assert.InDelta(t, 1.1028, decisions[1].NewStop, 1e-9)
}

func TestReconcilePurgesClosedTickets(t *testing.T) {
	tr := NewTracker(testProfiles())

	tr.Evaluate(longPosition(1.1020, 0))
	require.True(t, tr.Tracked("100045"))

	purged := tr.Reconcile(nil)
	assert.Equal(t, []string{"100045"}, purged)
	assert.False(t, tr.Tracked("100045"))
	assert.Empty(t, tr.States())
}

func TestReconcileKeepsLiveTickets(t *testing.T) {
	tr := NewTracker(testProfiles())
	pos := longPosition(1.1020, 0)
	tr.Evaluate(pos)

	purged := tr.Reconcile([]broker.Position{pos})
	assert.Empty(t, purged)
	assert.True(t, tr.Tracked(pos.Ticket))
}

func TestProfitPipsByPointSize(t *testing.T) {
	assert.InDelta(t, 20, ProfitPips(broker.Long, 1.1000, 1.1020, 0.0001), 1e-6)
	assert.InDelta(t, 20, ProfitPips(broker.Short, 1.1000, 1.0980, 0.0001), 1e-6)
	assert.InDelta(t, 50, ProfitPips(broker.Long, 155.00, 155.50, 0.01), 1e-6)
	assert.InDelta(t, 120, ProfitPips(broker.Long, 2400, 2520, 1.0), 1e-6)
	assert.InDelta(t, -10, ProfitPips(broker.Long, 1.1000, 1.0990, 0.0001), 1e-6)
}

func TestJPYProfilePointSize(t *testing.T) {
	tr := NewTracker(testProfiles())
	pos := broker.Position{
		Ticket:       "400088",
		Symbol:       "USDJPY",
		Direction:    broker.Long,
		OpenPrice:    155.00,
		CurrentPrice: 155.20, // 20 pips at 0.01 point
	}
	decisions := tr.Evaluate(pos)
	require.Len(t, decisions, 1)
	assert.InDelta(t, 155.03, decisions[0].NewStop, 1e-9)
}

func TestProfilePointSizeOverride(t *testing.T) {
	profiles := testProfiles()
	profiles.Symbols = map[string]Profile{
		"EURUSD": {
			BreakevenTriggerPips: 15,
			BreakevenOffsetPips:  3,
			TrailingTriggerPips:  20,
			TrailingDistancePips: 12,
			MinTrailingStepPips:  5,
			PointSize:            0.001,
		},
	}
	tr := NewTracker(profiles)

	// With a 0.001 point the 0.0020 move is only 2 pips: nothing fires.
	assert.Empty(t, tr.Evaluate(longPosition(1.1020, 0)))
}
