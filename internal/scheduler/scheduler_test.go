package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopRunsAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(ctx, "test", 10*time.Millisecond)
	loop.RunImmediately = true

	var runs atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Start(func(context.Context) { runs.Add(1) })
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}

func TestLoopRejectsNilTask(t *testing.T) {
	loop := NewLoop(context.Background(), "noop", time.Second)
	// Returns immediately instead of blocking.
	loop.Start(nil)
}

func TestLoopRejectsZeroInterval(t *testing.T) {
	loop := NewLoop(context.Background(), "noop", 0)
	loop.Start(func(context.Context) { t.Fatal("must not run") })
}

func TestParseIntervalDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"1m":  time.Minute,
		"15m": 15 * time.Minute,
		"4h":  4 * time.Hour,
		"1d":  24 * time.Hour,
		"1w":  7 * 24 * time.Hour,
	}
	for in, want := range cases {
		got, ok := ParseIntervalDuration(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "m", "0m", "-5m", "15x", "abc"} {
		_, ok := ParseIntervalDuration(bad)
		require.False(t, ok, bad)
	}
}
