// Package signal scores an indicator snapshot into a single directional
// confidence value and a discrete trade action.
package signal

import "time"

type Action string

const (
	ActionBuy     Action = "BUY"
	ActionSell    Action = "SELL"
	ActionNoTrade Action = "NO_TRADE"
)

type Quality string

const (
	QualityExcellent Quality = "EXCELLENT"
	QualityGood      Quality = "GOOD"
	QualityFair      Quality = "FAIR"
	QualityWeak      Quality = "WEAK"
)

// Signal is the scored outcome for one instrument. Value object, never
// mutated after creation.
type Signal struct {
	Symbol      string    `json:"symbol"`
	Score       int       `json:"score"`
	Confidence  int       `json:"confidence"`
	Action      Action    `json:"action"`
	Quality     Quality   `json:"quality"`
	Reasons     []string  `json:"reasons,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
