package position

import "time"

// Status 表示单只标的的持仓状态。
type Status int

const (
	// StatusFlat 表示空仓。
	StatusFlat Status = 0
	// StatusHolding 表示持仓。只有对账器在确认成交后才会置为该状态。
	StatusHolding Status = 1
)

// Position 为单只标的的持仓记录，按代码唯一。
// 信号引擎只改写 PendingSellSince 与 LastSignalTime 两个瞬态字段，
// Status/HoldVolume/成交价由对账器在次日确认成交后改写。
type Position struct {
	Code             string
	Status           Status
	HoldVolume       int64
	LastBuyPrice     *float64
	LastSellPrice    *float64
	PendingSellSince string
	LastSignalTime   string
	UpdateTime       string
}

// NewFlat 返回指定代码的空仓记录。
func NewFlat(code string) *Position {
	return &Position{
		Code:       code,
		Status:     StatusFlat,
		UpdateTime: time.Now().UTC().Format(time.RFC3339),
	}
}

// Holding 返回是否处于持仓状态。
// 注意 HoldVolume 在成交确认前可能短暂为0，调用方不应以0判定空仓。
func (p *Position) Holding() bool {
	return p.Status == StatusHolding
}

// Touch 刷新更新时间。
func (p *Position) Touch() {
	p.UpdateTime = time.Now().UTC().Format(time.RFC3339)
}
