package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astock-trader/internal/config"
)

func TestComputeCHOMatchesFormula(t *testing.T) {
	t.Parallel()

	// multiplier = (2*11-12-8)/(12+8) = 0.1，每根资金流 0.1*100 = 10
	// MID 累积为 [10,20,30]，MA(MID,2) 末值 25，MA(MID,3) 末值 20
	bars := []Bar{
		{Date: "2024-01-01", High: 12, Low: 8, Close: 11, Volume: 100},
		{Date: "2024-01-02", High: 12, Low: 8, Close: 11, Volume: 100},
		{Date: "2024-01-03", High: 12, Low: 8, Close: 11, Volume: 100},
	}

	cho, err := ComputeCHO(bars, config.StrategyConfig{Short: 2, Long: 3})
	require.NoError(t, err)
	require.Len(t, cho, 3)
	assert.InDelta(t, 5.0, cho[2], 1e-9)
}

func TestComputeCHOZeroPriceRangeContributesNothing(t *testing.T) {
	t.Parallel()

	bars := []Bar{
		{Date: "2024-01-01", High: 12, Low: 8, Close: 11, Volume: 100},
		{Date: "2024-01-02", High: 0, Low: 0, Close: 0, Volume: 100},
		{Date: "2024-01-03", High: 12, Low: 8, Close: 11, Volume: 100},
	}

	cho, err := ComputeCHO(bars, config.StrategyConfig{Short: 2, Long: 3})
	require.NoError(t, err)
	// 停牌日资金流记 0：MID=[10,10,20]，MA2 末值 15，MA3 末值 40/3
	assert.InDelta(t, 15.0-40.0/3.0, cho[2], 1e-9)
}

func TestComputeCHORequiresLongWindow(t *testing.T) {
	t.Parallel()

	bars := []Bar{{Date: "2024-01-01", High: 12, Low: 8, Close: 11, Volume: 100}}
	_, err := ComputeCHO(bars, config.StrategyConfig{Short: 2, Long: 3})
	assert.Error(t, err)
}
