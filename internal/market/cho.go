package market

import (
	"fmt"

	talib "github.com/markcheno/go-talib"

	"astock-trader/internal/config"
)

// ComputeCHO 计算 CHO 振荡序列，用于补齐缺失该列的行情文件：
//
//	MID := SUM(VOLUME*(2*CLOSE-HIGH-LOW)/(HIGH+LOW))
//	CHO := MA(MID,short) - MA(MID,long)
//
// 两条均线均为简单移动平均，HIGH+LOW 为零的日线资金流记 0。
func ComputeCHO(bars []Bar, cfg config.StrategyConfig) ([]float64, error) {
	if len(bars) < cfg.Long {
		return nil, fmt.Errorf("market: 计算CHO需要至少 %d 根日线，实际 %d", cfg.Long, len(bars))
	}

	mid := make([]float64, len(bars))
	var cum float64
	for i, bar := range bars {
		if denom := bar.High + bar.Low; denom != 0 {
			cum += bar.Volume * (2*bar.Close - bar.High - bar.Low) / denom
		}
		mid[i] = cum
	}

	maShort := talib.Sma(mid, cfg.Short)
	maLong := talib.Sma(mid, cfg.Long)
	cho := make([]float64, len(mid))
	for i := range mid {
		cho[i] = maShort[i] - maLong[i]
	}
	return cho, nil
}

// MACHO 返回 CHO 的 n 日简单移动平均，用于报表展示。
func MACHO(cho []float64, n int) []float64 {
	if n <= 0 || len(cho) < n {
		return nil
	}
	return talib.Sma(cho, n)
}

// EnsureCHO 在序列缺失 CHO 列时就地补算。
// 已带 CHO 的序列原样返回，保持上游预计算值的权威性。
func EnsureCHO(bars []Bar, hasCHO bool, cfg config.StrategyConfig) ([]Bar, error) {
	if hasCHO {
		return bars, nil
	}

	cho, err := ComputeCHO(bars, cfg)
	if err != nil {
		return nil, err
	}
	for i := range bars {
		bars[i].CHO = cho[i]
	}
	return bars, nil
}
