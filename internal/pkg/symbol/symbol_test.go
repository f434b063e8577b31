package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in    string
		base  string
		quote string
	}{
		{"EURUSD", "EUR", "USD"},
		{"eurusd", "EUR", "USD"},
		{"EUR/USD", "EUR", "USD"},
		{"USDJPY", "USD", "JPY"},
		{"EURUSD.m", "EUR", "USD"},
		{"XAUUSD", "XAU", "USD"},
		{"BTCUSDT", "BTC", "USDT"},
		{"", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			sym := Parse(tc.in)
			assert.Equal(t, tc.base, sym.Base)
			assert.Equal(t, tc.quote, sym.Quote)
		})
	}
}

func TestPointSize(t *testing.T) {
	assert.Equal(t, PointFX, PointSize("EURUSD"))
	assert.Equal(t, PointFX, PointSize("GBPCHF"))
	assert.Equal(t, PointJPY, PointSize("USDJPY"))
	assert.Equal(t, PointJPY, PointSize("EURJPY.m"))
	assert.Equal(t, PointCoarse, PointSize("XAUUSD"))
	assert.Equal(t, PointCoarse, PointSize("BTCUSDT"))
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{"eurusd", "EURUSD.m", "usdjpy", ""})
	assert.Equal(t, []string{"EURUSD", "USDJPY"}, got)
}
