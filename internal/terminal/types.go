package terminal

// OrderRequest 描述一笔限价委托。
type OrderRequest struct {
	Code       string  `json:"code"`
	Side       string  `json:"side"`
	LimitPrice float64 `json:"limit_price"`
	Volume     int64   `json:"volume"`
}

// OrderStatus 为按请求号查询到的委托状态。
type OrderStatus struct {
	Status       string  `json:"order_status"`
	OrderPrice   float64 `json:"order_price"`
	TradedPrice  float64 `json:"traded_price"`
	TradedVolume int64   `json:"traded_volume"`
	OrderNumber  string  `json:"order_number"`
}

// TradeDetail 为按代码查询到的单笔成交明细。
type TradeDetail struct {
	Code         string  `json:"code"`
	TradeID      string  `json:"trade_id"`
	TradedPrice  float64 `json:"traded_price"`
	TradedVolume int64   `json:"traded_volume"`
	TradeTime    string  `json:"trade_time"`
}
