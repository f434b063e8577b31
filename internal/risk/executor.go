package risk

import (
	"context"
	"fmt"
	"time"

	"stoppilot/internal/gateway/broker"
	"stoppilot/internal/gateway/notifier"
	"stoppilot/internal/logger"
	"stoppilot/internal/pkg/circuit"
)

const defaultModifyTimeout = 8 * time.Second

// Executor applies tracker decisions against the gateway. One modify call per
// decision, never retried within the cycle; a rejection surfaces on the next
// tick with fresh prices.
type Executor struct {
	gateway broker.Gateway
	tracker *Tracker
	sink    notifier.Sink
	breaker *circuit.Breaker
	timeout time.Duration
}

func NewExecutor(gateway broker.Gateway, tracker *Tracker, sink notifier.Sink, breaker *circuit.Breaker) *Executor {
	if sink == nil {
		sink = notifier.Noop{}
	}
	return &Executor{
		gateway: gateway,
		tracker: tracker,
		sink:    sink,
		breaker: breaker,
		timeout: defaultModifyTimeout,
	}
}

// SetTimeout overrides the per-call gateway deadline.
func (e *Executor) SetTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// Apply pushes one decision to the gateway. On success the tracker latches
// the outcome and exactly one notification is emitted; notification failures
// are logged and swallowed.
func (e *Executor) Apply(ctx context.Context, d Decision) error {
	if e.breaker != nil && !e.breaker.Allow() {
		return fmt.Errorf("modify suppressed for %s: breaker open", d.Symbol)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.gateway.ModifyStopLevels(callCtx, d.Ticket, d.NewStop, d.TakeProfit)
	if err != nil {
		if e.breaker != nil {
			e.breaker.RecordFailure()
		}
		return fmt.Errorf("modify stop for ticket %s: %w", d.Ticket, err)
	}
	if e.breaker != nil {
		e.breaker.RecordSuccess()
	}

	e.tracker.Confirm(d)
	logger.Infof("risk: %s applied ticket=%s symbol=%s stop %.5f -> %.5f (%.1f pips in profit)",
		d.Kind, d.Ticket, d.Symbol, d.OldStop, d.NewStop, d.ProfitPips)

	event := notifier.RiskEvent{
		Ticket:     d.Ticket,
		Symbol:     d.Symbol,
		Kind:       string(d.Kind),
		OldStop:    d.OldStop,
		NewStop:    d.NewStop,
		ProfitPips: d.ProfitPips,
		Timestamp:  time.Now().UTC(),
	}
	if nerr := e.sink.Notify(event); nerr != nil {
		logger.Warnf("risk: notification failed for ticket %s: %v", d.Ticket, nerr)
	}
	return nil
}

// Process evaluates and applies all due adjustments for one position
// snapshot, returning the decisions that went through. Per-ticket errors are
// logged, not propagated, so one broken ticket never stalls the rest of the
// tick.
func (e *Executor) Process(ctx context.Context, pos broker.Position) []Decision {
	var applied []Decision
	for _, d := range e.tracker.Evaluate(pos) {
		if err := e.Apply(ctx, d); err != nil {
			if broker.IsRejected(err) {
				logger.Warnf("risk: broker rejected %s for ticket %s: %v", d.Kind, d.Ticket, err)
			} else {
				logger.Errorf("risk: apply %s for ticket %s failed: %v", d.Kind, d.Ticket, err)
			}
			// A failed breakeven must not let a queued trailing decision
			// leapfrog it against a stale stop; restart from fresh state
			// next cycle.
			return applied
		}
		applied = append(applied, d)
	}
	return applied
}
