package pricing

import (
	"math"
	"strings"
)

// Side 表示委托方向。
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

const roundEpsilon = 1e-9

// LimitBand 根据代码与证券名称推断当日涨跌幅限制。
// ST 股 5%，创业板/科创板/北交所 20%，其余主板 10%。
func LimitBand(code string, securityName string) float64 {
	code = strings.ToUpper(code)
	if securityName != "" && strings.Contains(strings.ToUpper(securityName), "ST") {
		return 0.05
	}
	if strings.HasPrefix(code, "300") || strings.HasPrefix(code, "301") || strings.HasPrefix(code, "688") {
		return 0.20
	}
	if strings.HasSuffix(code, ".BJ") {
		return 0.20
	}
	if strings.HasPrefix(code, "ST") {
		return 0.05
	}
	return 0.10
}

// TickSize 返回代码对应的最小报价单位，北交所为 0.001，其余为 0.01。
func TickSize(code string) float64 {
	if strings.HasSuffix(strings.ToUpper(code), ".BJ") {
		return 0.001
	}
	return 0.01
}

// LimitPrice 以参考价与涨跌幅上限计算可成交的限价。
// 买向上靠档，卖向下靠档，epsilon 用于规避浮点边界落错档位。
func LimitPrice(referencePrice float64, side Side, pct float64, tick float64) float64 {
	multiplier := 1 + pct
	if side == SideSell {
		multiplier = 1 - pct
	}
	raw := referencePrice * multiplier

	var adjusted float64
	if side == SideSell {
		adjusted = math.Floor(raw/tick+roundEpsilon) * tick
	} else {
		adjusted = math.Ceil(raw/tick-roundEpsilon) * tick
	}

	decimals := 2
	if tick < 0.01 {
		decimals = 3
	}
	scale := math.Pow10(decimals)
	return math.Round(adjusted*scale) / scale
}
