// Package scheduler runs the periodic tick loops. Each loop owns one concern
// (signal generation, risk evaluation) and stops with the context.
package scheduler

import (
	"context"
	"time"

	"stoppilot/internal/logger"
)

// Loop invokes a task on a fixed interval. Ticks never overlap: a slow task
// simply delays the next run.
type Loop struct {
	Name           string
	Interval       time.Duration
	RunImmediately bool

	ctx   context.Context
	nowFn func() time.Time
}

func NewLoop(ctx context.Context, name string, interval time.Duration) *Loop {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Loop{
		Name:     name,
		Interval: interval,
		ctx:      ctx,
		nowFn:    time.Now,
	}
}

// Start blocks until the context is cancelled.
func (l *Loop) Start(task func(context.Context)) {
	if l == nil {
		return
	}
	if task == nil {
		logger.Warnf("loop %s: task is nil, exit", l.Name)
		return
	}
	if l.Interval <= 0 {
		logger.Warnf("loop %s: invalid interval=%s, exit", l.Name, l.Interval)
		return
	}
	if l.ctx == nil {
		l.ctx = context.Background()
	}
	if l.nowFn == nil {
		l.nowFn = time.Now
	}

	startAt := l.nowFn().UTC()
	logger.Infof("loop %s: started interval=%s run_immediately=%v at=%s",
		l.Name, l.Interval, l.RunImmediately, startAt.Format(time.RFC3339))

	if l.RunImmediately {
		task(l.ctx)
	}

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.ctx.Done():
			logger.Infof("loop %s: ctx done, exit (uptime=%s)",
				l.Name, l.nowFn().UTC().Sub(startAt).Truncate(time.Second))
			return
		case <-ticker.C:
			task(l.ctx)
		}
	}
}
