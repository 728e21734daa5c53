package signal

import (
	"go.uber.org/zap"

	"astock-trader/internal/market"
	"astock-trader/internal/position"
	"astock-trader/internal/pricing"
)

// Signal 为一次评估产出的交易信号，随即被委托生成器消费，不单独落盘。
type Signal struct {
	Code           string
	Side           pricing.Side
	SignalTime     string
	ReferencePrice float64
	SecurityName   string
}

// Engine 基于 CHO 振荡值的日间变化生成信号。
// 买入看单日抬升即时生效；卖出要求连续两日回落（先挂起后确认），
// 过滤单日噪声带来的反复换手。
type Engine struct {
	logger *zap.Logger
}

// NewEngine 创建信号引擎。
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Evaluate 对单只标的评估最新两根日线，返回0或1条信号与更新后的持仓。
// 引擎只改写 PendingSellSince / LastSignalTime 两个瞬态字段，
// Status 与 HoldVolume 留给对账器在确认成交后改写；持久化由调用方负责。
func (e *Engine) Evaluate(code string, bars []market.Bar, pos *position.Position) ([]Signal, *position.Position) {
	if pos == nil {
		pos = position.NewFlat(code)
	}

	if len(bars) < 2 {
		// 数据不足视为未评估，已有持仓原样返回
		return nil, pos
	}

	latest := bars[len(bars)-1]
	prev := bars[len(bars)-2]
	signalTime := latest.Date

	var signals []Signal

	switch {
	case !pos.Holding() && latest.CHO > prev.CHO:
		signals = append(signals, Signal{
			Code:           code,
			Side:           pricing.SideBuy,
			SignalTime:     signalTime,
			ReferencePrice: latest.Close,
			SecurityName:   latest.SecurityName,
		})
		pos.LastSignalTime = signalTime
		e.logger.Debug("产生买入信号",
			zap.String("code", code),
			zap.String("signal_time", signalTime),
			zap.Float64("cho", latest.CHO),
			zap.Float64("cho_prev", prev.CHO),
		)

	case pos.Holding() && pos.PendingSellSince == "":
		if latest.CHO < prev.CHO {
			// 第一日回落仅挂起，待次日确认
			pos.PendingSellSince = signalTime
			e.logger.Debug("卖出信号挂起",
				zap.String("code", code),
				zap.String("pending_since", signalTime),
			)
		}

	case pos.Holding() && pos.PendingSellSince != "":
		if latest.CHO < prev.CHO {
			signals = append(signals, Signal{
				Code:           code,
				Side:           pricing.SideSell,
				SignalTime:     signalTime,
				ReferencePrice: latest.Close,
				SecurityName:   latest.SecurityName,
			})
			pos.PendingSellSince = ""
			pos.LastSignalTime = signalTime
			e.logger.Debug("连续两日回落，确认卖出信号",
				zap.String("code", code),
				zap.String("signal_time", signalTime),
			)
		} else {
			// 未继续回落即解除挂起，走平同样视为回落中断
			pos.PendingSellSince = ""
			e.logger.Debug("回落未获确认，解除卖出挂起",
				zap.String("code", code),
				zap.Float64("cho", latest.CHO),
				zap.Float64("cho_prev", prev.CHO),
			)
		}
	}

	pos.Touch()
	return signals, pos
}
