// Package risk implements the position risk automation: breakeven lock-in and
// trailing stops over positions owned by the broker gateway.
package risk

import (
	"fmt"

	symbolpkg "stoppilot/internal/pkg/symbol"
)

// Profile is the per-symbol risk parameterization. All distances are in pips;
// PointSize converts them to price units (0 means classify from the symbol).
type Profile struct {
	BreakevenTriggerPips float64 `yaml:"breakeven_trigger_pips" mapstructure:"breakeven_trigger_pips"`
	BreakevenOffsetPips  float64 `yaml:"breakeven_offset_pips" mapstructure:"breakeven_offset_pips"`
	TrailingTriggerPips  float64 `yaml:"trailing_trigger_pips" mapstructure:"trailing_trigger_pips"`
	TrailingDistancePips float64 `yaml:"trailing_distance_pips" mapstructure:"trailing_distance_pips"`
	MinTrailingStepPips  float64 `yaml:"min_trailing_step_pips" mapstructure:"min_trailing_step_pips"`
	PointSize            float64 `yaml:"point_size" mapstructure:"point_size"`
}

func (p Profile) Validate() error {
	if p.BreakevenTriggerPips <= 0 {
		return fmt.Errorf("breakeven_trigger_pips must be > 0")
	}
	if p.BreakevenOffsetPips < 0 {
		return fmt.Errorf("breakeven_offset_pips cannot be negative")
	}
	if p.TrailingTriggerPips <= 0 {
		return fmt.Errorf("trailing_trigger_pips must be > 0")
	}
	if p.TrailingDistancePips <= 0 {
		return fmt.Errorf("trailing_distance_pips must be > 0")
	}
	if p.TrailingDistancePips >= p.TrailingTriggerPips {
		return fmt.Errorf("trailing_distance_pips must be smaller than trailing_trigger_pips")
	}
	if p.MinTrailingStepPips < 0 {
		return fmt.Errorf("min_trailing_step_pips cannot be negative")
	}
	if p.PointSize < 0 {
		return fmt.Errorf("point_size cannot be negative")
	}
	return nil
}

// PointFor resolves the pip size for a symbol: profile override first, symbol
// classification otherwise.
func (p Profile) PointFor(symbol string) float64 {
	if p.PointSize > 0 {
		return p.PointSize
	}
	return symbolpkg.PointSize(symbol)
}

// ProfileSource resolves the effective profile for a symbol. Implementations
// must be safe for concurrent use; the loader swaps profile sets between
// ticks.
type ProfileSource interface {
	Lookup(symbol string) Profile
}

// StaticProfiles is a fixed default+overrides profile table.
type StaticProfiles struct {
	Default Profile
	Symbols map[string]Profile
}

func (s StaticProfiles) Lookup(symbol string) Profile {
	if p, ok := s.Symbols[symbolpkg.Normalize(symbol)]; ok {
		return p
	}
	return s.Default
}

func (s StaticProfiles) Validate() error {
	if err := s.Default.Validate(); err != nil {
		return fmt.Errorf("default profile: %w", err)
	}
	for sym, p := range s.Symbols {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("profile %s: %w", sym, err)
		}
	}
	return nil
}

// DefaultProfile is a conservative FX baseline used when no configuration is
// supplied.
func DefaultProfile() Profile {
	return Profile{
		BreakevenTriggerPips: 15,
		BreakevenOffsetPips:  3,
		TrailingTriggerPips:  20,
		TrailingDistancePips: 12,
		MinTrailingStepPips:  5,
	}
}
