package risk

import (
	"sync"
	"time"

	"stoppilot/internal/gateway/broker"
)

// Kind labels a stop adjustment.
type Kind string

const (
	KindBreakeven Kind = "BREAKEVEN"
	KindTrailing  Kind = "TRAILING"
)

// Decision is one stop modification the tracker wants applied. It carries the
// snapshot values it was computed from so the executor and notifier never
// re-fetch mid-action.
type Decision struct {
	Ticket     string
	Symbol     string
	Direction  broker.Direction
	Kind       Kind
	OldStop    float64
	NewStop    float64
	TakeProfit float64
	ProfitPips float64
}

// state is the session-lifetime memory per ticket. Created on first sight of
// a ticket, dropped when the ticket leaves the gateway's open list.
type state struct {
	symbol           string
	breakevenApplied bool
	lastTrailingStop float64 // 0 = unset
	firstSeen        time.Time
}

// StateView is a read-only copy of a tracked ticket for status reporting.
type StateView struct {
	Ticket           string    `json:"ticket"`
	Symbol           string    `json:"symbol"`
	BreakevenApplied bool      `json:"breakeven_applied"`
	LastTrailingStop float64   `json:"last_trailing_stop,omitempty"`
	FirstSeen        time.Time `json:"first_seen"`
}

// Tracker owns all mutable risk state. One instance per process; every access
// goes through its mutex so per-symbol workers may evaluate concurrently.
type Tracker struct {
	mu       sync.Mutex
	states   map[string]*state
	profiles ProfileSource
}

func NewTracker(profiles ProfileSource) *Tracker {
	return &Tracker{
		states:   make(map[string]*state),
		profiles: profiles,
	}
}

// Evaluate inspects one position snapshot and returns the stop adjustments
// that are due, in application order. Both the breakeven and trailing checks
// run on every call; neither gates the other. Nothing is latched here:
// Confirm records outcomes after the gateway accepted them.
func (t *Tracker) Evaluate(pos broker.Position) []Decision {
	if pos.Ticket == "" || pos.OpenPrice <= 0 || pos.CurrentPrice <= 0 {
		return nil
	}
	profile := t.profiles.Lookup(pos.Symbol)
	point := profile.PointFor(pos.Symbol)
	if point <= 0 {
		return nil
	}
	profit := ProfitPips(pos.Direction, pos.OpenPrice, pos.CurrentPrice, point)

	t.mu.Lock()
	st, ok := t.states[pos.Ticket]
	if !ok {
		st = &state{symbol: pos.Symbol, firstSeen: time.Now().UTC()}
		t.states[pos.Ticket] = st
	}
	breakevenDone := st.breakevenApplied
	trailingFloor := st.lastTrailingStop
	t.mu.Unlock()

	var out []Decision
	// All guard comparisons use this one snapshot of the current stop.
	curStop := pos.StopLoss

	if !breakevenDone && profit >= profile.BreakevenTriggerPips {
		newStop := shiftPips(pos.OpenPrice, profile.BreakevenOffsetPips, point, pos.Direction.Sign())
		if moreFavorable(pos.Direction, newStop, curStop) {
			out = append(out, Decision{
				Ticket:     pos.Ticket,
				Symbol:     pos.Symbol,
				Direction:  pos.Direction,
				Kind:       KindBreakeven,
				OldStop:    pos.StopLoss,
				NewStop:    newStop,
				TakeProfit: pos.TakeProfit,
				ProfitPips: profit,
			})
			// The trailing guard below measures against the stop as it will
			// stand once breakeven is applied.
			curStop = newStop
		}
	}

	if profit >= profile.TrailingTriggerPips {
		candidate := shiftPips(pos.CurrentPrice, profile.TrailingDistancePips, point, -pos.Direction.Sign())
		ref := curStop
		if trailingFloor > 0 && moreFavorable(pos.Direction, trailingFloor, ref) {
			ref = trailingFloor
		}
		minStep := profile.MinTrailingStepPips * point
		if moreFavorable(pos.Direction, candidate, ref) && improvement(pos.Direction, candidate, ref) >= minStep {
			out = append(out, Decision{
				Ticket:     pos.Ticket,
				Symbol:     pos.Symbol,
				Direction:  pos.Direction,
				Kind:       KindTrailing,
				OldStop:    pos.StopLoss,
				NewStop:    candidate,
				TakeProfit: pos.TakeProfit,
				ProfitPips: profit,
			})
		}
	}

	return out
}

// Confirm records a successfully applied decision. Breakeven latches exactly
// once per ticket; the trailing floor only ever moves in the position's
// favor, so a stale confirm cannot loosen it.
func (t *Tracker) Confirm(d Decision) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[d.Ticket]
	if !ok {
		return
	}
	switch d.Kind {
	case KindBreakeven:
		st.breakevenApplied = true
	case KindTrailing:
		if st.lastTrailingStop == 0 || moreFavorable(d.Direction, d.NewStop, st.lastTrailingStop) {
			st.lastTrailingStop = d.NewStop
		}
	}
}

// Reconcile drops state for tickets no longer open at the gateway and
// returns the purged ticket ids.
func (t *Tracker) Reconcile(open []broker.Position) []string {
	alive := make(map[string]struct{}, len(open))
	for _, p := range open {
		alive[p.Ticket] = struct{}{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var purged []string
	for ticket := range t.states {
		if _, ok := alive[ticket]; !ok {
			delete(t.states, ticket)
			purged = append(purged, ticket)
		}
	}
	return purged
}

// States returns a copy of all tracked tickets, for the status API.
func (t *Tracker) States() []StateView {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]StateView, 0, len(t.states))
	for ticket, st := range t.states {
		out = append(out, StateView{
			Ticket:           ticket,
			Symbol:           st.symbol,
			BreakevenApplied: st.breakevenApplied,
			LastTrailingStop: st.lastTrailingStop,
			FirstSeen:        st.firstSeen,
		})
	}
	return out
}

// Tracked reports whether a ticket currently has state.
func (t *Tracker) Tracked(ticket string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.states[ticket]
	return ok
}
