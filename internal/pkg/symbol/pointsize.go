package symbol

// Point sizes express one pip in price units. Standard FX pairs tick in
// 0.0001, JPY-quoted pairs in 0.01, metals and crypto in whole price units.
const (
	PointFX     = 0.0001
	PointJPY    = 0.01
	PointCoarse = 1.0
)

// PointSize returns the pip size for a symbol based on its classification.
// Per-symbol overrides live in the risk profile, not here.
func PointSize(raw string) float64 {
	switch {
	case IsJPYQuoted(raw):
		return PointJPY
	case IsMetal(raw), IsCrypto(raw):
		return PointCoarse
	default:
		return PointFX
	}
}
