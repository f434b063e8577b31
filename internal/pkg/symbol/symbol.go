package symbol

import (
	"strings"
)

// Symbol is a parsed instrument identifier, e.g. EURUSD -> {EUR, USD}.
type Symbol struct {
	Base  string
	Quote string
}

func (s Symbol) String() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + s.Quote
}

var quoteCurrencies = []string{"USDT", "USDC", "JPY", "USD", "EUR", "GBP", "CHF", "CAD", "AUD", "NZD"}

var metalBases = map[string]bool{
	"XAU": true,
	"XAG": true,
	"XPT": true,
	"XPD": true,
}

var cryptoBases = map[string]bool{
	"BTC": true,
	"ETH": true,
	"SOL": true,
	"BNB": true,
	"XRP": true,
}

// Parse splits a broker symbol into base and quote. Accepts "EURUSD",
// "EUR/USD" and suffixed variants such as "EURUSD.m" (common on MT-style
// broker feeds).
func Parse(raw string) Symbol {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return Symbol{}
	}
	if idx := strings.IndexAny(s, ".:_-"); idx > 0 {
		s = s[:idx]
	}
	if parts := strings.SplitN(s, "/", 2); len(parts) == 2 {
		return Symbol{
			Base:  strings.TrimSpace(parts[0]),
			Quote: strings.TrimSpace(parts[1]),
		}
	}
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Symbol{
				Base:  s[:len(s)-len(quote)],
				Quote: quote,
			}
		}
	}
	return Symbol{}
}

// Normalize upper-cases and strips broker suffixes, keeping the compact form.
func Normalize(raw string) string {
	if sym := Parse(raw); sym.Base != "" {
		return sym.String()
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}

func NormalizeList(symbols []string) []string {
	if len(symbols) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, raw := range symbols {
		n := Normalize(raw)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// IsJPYQuoted reports whether the instrument is quoted in Japanese yen.
func IsJPYQuoted(raw string) bool {
	return Parse(raw).Quote == "JPY"
}

// IsMetal reports whether the instrument is a spot metal (gold, silver, ...).
func IsMetal(raw string) bool {
	return metalBases[Parse(raw).Base]
}

// IsCrypto reports whether the instrument is a crypto pair.
func IsCrypto(raw string) bool {
	sym := Parse(raw)
	if cryptoBases[sym.Base] {
		return true
	}
	return sym.Quote == "USDT" || sym.Quote == "USDC"
}
