package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stoppilot/internal/risk"
	"stoppilot/internal/signal"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSignalRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at := time.Now().Truncate(time.Millisecond)
	sig := signal.Signal{
		Symbol:      "EURUSD",
		Score:       55,
		Confidence:  55,
		Action:      signal.ActionBuy,
		Quality:     signal.QualityFair,
		Reasons:     []string{"+20 RSI oversold (28.0)", "+25 price at lower band (pos=0.05)"},
		GeneratedAt: at,
	}
	require.NoError(t, s.AppendSignal(ctx, "trace-1", sig))

	got, err := s.ListRecentSignals(ctx, "eurusd", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "trace-1", got[0].TraceID)
	require.Equal(t, "EURUSD", got[0].Symbol)
	require.Equal(t, 55, got[0].Score)
	require.Equal(t, "BUY", got[0].Action)
	require.Len(t, got[0].Reasons, 2)
	require.Equal(t, at.UnixMilli(), got[0].GeneratedAt.UnixMilli())
}

func TestSignalsOrderedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AppendSignal(ctx, "t", signal.Signal{
			Symbol:      "GBPUSD",
			Score:       i,
			Action:      signal.ActionNoTrade,
			Quality:     signal.QualityWeak,
			GeneratedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := s.ListRecentSignals(ctx, "GBPUSD", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 2, got[0].Score)
	require.Equal(t, 1, got[1].Score)
}

func TestRiskActionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at := time.Now()
	d := risk.Decision{
		Ticket:     "84411",
		Symbol:     "EURUSD",
		Kind:       risk.KindBreakeven,
		OldStop:    1.0980,
		NewStop:    1.1003,
		ProfitPips: 16,
	}
	require.NoError(t, s.AppendRiskAction(ctx, "trace-9", d, at))

	got, err := s.ListRecentRiskActions(ctx, "84411", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "BREAKEVEN", got[0].Kind)
	require.InDelta(t, 1.1003, got[0].NewStop, 1e-9)
	require.InDelta(t, 16, got[0].ProfitPips, 1e-9)

	none, err := s.ListRecentRiskActions(ctx, "99999", 10)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	ctx := context.Background()

	require.NoError(t, s.AppendSignal(ctx, "t", signal.Signal{Symbol: "EURUSD"}))
	require.NoError(t, s.AppendRiskAction(ctx, "t", risk.Decision{Ticket: "1"}, time.Now()))

	sigs, err := s.ListRecentSignals(ctx, "", 10)
	require.NoError(t, err)
	require.Nil(t, sigs)
	require.NoError(t, s.Close())
}

func TestNewStoreRequiresPath(t *testing.T) {
	_, err := NewStore("  ")
	require.Error(t, err)
}
