package order

import "astock-trader/internal/pricing"

// Status 表示待执行委托的生命周期状态。
type Status string

const (
	// StatusPending 表示已生成、未提交。
	StatusPending Status = "Pending"
	// StatusSubmitted 表示已提交终端并获得请求号。
	StatusSubmitted Status = "Submitted"
	// StatusFailed 表示重试耗尽后提交失败。
	StatusFailed Status = "Failed"
)

// PendingOrder 为一笔待执行的限价委托。
// 由委托生成器创建，执行器就地改写 RequestID/Status/Notes，
// 对账器只读（凭 RequestID 查询终端）。
type PendingOrder struct {
	LocalID    string       `json:"local_id"`
	Code       string       `json:"code"`
	Side       pricing.Side `json:"side"`
	Volume     int64        `json:"volume"`
	LimitPrice float64      `json:"limit_price"`
	SignalTime string       `json:"signal_time"`
	TradeDate  string       `json:"trade_date"`
	RequestID  string       `json:"request_id,omitempty"`
	Status     Status       `json:"status"`
	Notes      string       `json:"notes,omitempty"`
}
