package market

// Bar 代表单根日线，含预计算的 CHO 振荡值。
type Bar struct {
	Date         string
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	CHO          float64
	SecurityName string
}
