package notifier

import "time"

// RiskEvent describes one applied stop adjustment. Exactly one event is
// emitted per successful gateway modification.
type RiskEvent struct {
	Ticket     string    `json:"ticket"`
	Symbol     string    `json:"symbol"`
	Kind       string    `json:"kind"` // BREAKEVEN | TRAILING
	OldStop    float64   `json:"old_stop"`
	NewStop    float64   `json:"new_stop"`
	ProfitPips float64   `json:"profit_pips"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink receives risk events. Delivery is fire-and-forget: a failing sink is
// logged by the caller and never blocks or fails the risk action.
type Sink interface {
	Notify(event RiskEvent) error
}

// Noop drops every event. Used in tests and when notifications are disabled.
type Noop struct{}

func (Noop) Notify(RiskEvent) error { return nil }
