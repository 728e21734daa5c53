package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitBand(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.10, LimitBand("600000.SH", ""), 1e-12)
	assert.InDelta(t, 0.20, LimitBand("300750.SZ", ""), 1e-12)
	assert.InDelta(t, 0.20, LimitBand("301269.SZ", ""), 1e-12)
	assert.InDelta(t, 0.20, LimitBand("688001.SH", ""), 1e-12)
	assert.InDelta(t, 0.20, LimitBand("430001.BJ", ""), 1e-12)
	assert.InDelta(t, 0.05, LimitBand("600600.SH", "ST海创"), 1e-12)
	assert.InDelta(t, 0.05, LimitBand("600600.SH", "*st东洋"), 1e-12)
}

func TestTickSize(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.01, TickSize("600000.SH"), 1e-12)
	assert.InDelta(t, 0.01, TickSize("300750.SZ"), 1e-12)
	assert.InDelta(t, 0.001, TickSize("430001.BJ"), 1e-12)
}

func TestLimitPrice(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 11.0, LimitPrice(10.0, SideBuy, 0.10, 0.01), 1e-9)
	assert.InDelta(t, 9.0, LimitPrice(10.0, SideSell, 0.10, 0.01), 1e-9)
	assert.InDelta(t, 12.0, LimitPrice(10.0, SideBuy, 0.20, 0.001), 1e-9)
	assert.InDelta(t, 8.0, LimitPrice(10.0, SideSell, 0.20, 0.001), 1e-9)
}

func TestLimitPriceBuyRoundsUpSellRoundsDown(t *testing.T) {
	t.Parallel()

	// 10.01 * 1.1 = 11.011，买向上靠 0.01 档
	assert.InDelta(t, 11.02, LimitPrice(10.01, SideBuy, 0.10, 0.01), 1e-9)
	// 10.01 * 0.9 = 9.009，卖向下靠档
	assert.InDelta(t, 9.00, LimitPrice(10.01, SideSell, 0.10, 0.01), 1e-9)
}

func TestLimitPriceIdempotentUnderRepeatedRounding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ref  float64
		side Side
		pct  float64
		tick float64
	}{
		{10.0, SideBuy, 0.10, 0.01},
		{10.01, SideSell, 0.10, 0.01},
		{3.33, SideBuy, 0.20, 0.001},
		{7.77, SideSell, 0.05, 0.01},
	}

	for _, tc := range cases {
		once := LimitPrice(tc.ref, tc.side, tc.pct, tc.tick)
		// 已靠档的价格按零涨跌幅重算应落回原档位
		again := LimitPrice(once, tc.side, 0, tc.tick)
		assert.InDelta(t, once, again, 1e-9, "ref=%v side=%v pct=%v", tc.ref, tc.side, tc.pct)
	}
}
