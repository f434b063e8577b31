package notifier

import (
	"fmt"
	"strings"
)

// FormatRiskEvent renders one stop adjustment as a short Markdown message.
func FormatRiskEvent(e RiskEvent) string {
	var b strings.Builder
	switch e.Kind {
	case "BREAKEVEN":
		b.WriteString("🔒 *Breakeven locked*\n")
	case "TRAILING":
		b.WriteString("📈 *Trailing stop moved*\n")
	default:
		fmt.Fprintf(&b, "*%s*\n", e.Kind)
	}
	fmt.Fprintf(&b, "`%s` ticket %s\n", e.Symbol, e.Ticket)
	if e.OldStop > 0 {
		fmt.Fprintf(&b, "stop %.5f → %.5f\n", e.OldStop, e.NewStop)
	} else {
		fmt.Fprintf(&b, "stop set at %.5f\n", e.NewStop)
	}
	fmt.Fprintf(&b, "profit %.1f pips", e.ProfitPips)
	return b.String()
}
