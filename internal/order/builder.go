package order

import (
	"go.uber.org/zap"

	"github.com/oklog/ulid/v2"

	"astock-trader/internal/pricing"
	"astock-trader/internal/signal"
)

// Builder 把信号转换为带限价的待执行委托并按交易日落盘。
type Builder struct {
	store  *Store
	logger *zap.Logger
}

// NewBuilder 创建委托生成器。
func NewBuilder(store *Store, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{store: store, logger: logger}
}

// Build 为指定交易日生成委托批次并返回批次文件路径。
// 缺少参考价的信号无法定价，跳过并告警；同日重复生成为整体重建。
func (b *Builder) Build(signals []signal.Signal, tradeDate string, volumePerTrade int64) (string, error) {
	orders := make([]PendingOrder, 0, len(signals))
	for _, sig := range signals {
		if sig.ReferencePrice <= 0 {
			b.logger.Warn("信号缺少参考价，跳过",
				zap.String("code", sig.Code),
				zap.String("side", string(sig.Side)),
			)
			continue
		}

		pct := pricing.LimitBand(sig.Code, sig.SecurityName)
		tick := pricing.TickSize(sig.Code)
		limitPrice := pricing.LimitPrice(sig.ReferencePrice, sig.Side, pct, tick)

		orders = append(orders, PendingOrder{
			LocalID:    ulid.Make().String(),
			Code:       sig.Code,
			Side:       sig.Side,
			Volume:     volumePerTrade,
			LimitPrice: limitPrice,
			SignalTime: sig.SignalTime,
			TradeDate:  tradeDate,
			Status:     StatusPending,
		})

		b.logger.Info("生成待执行委托",
			zap.String("code", sig.Code),
			zap.String("side", string(sig.Side)),
			zap.Float64("reference_price", sig.ReferencePrice),
			zap.Float64("limit_price", limitPrice),
			zap.Float64("band", pct),
		)
	}

	return b.store.Save(tradeDate, orders)
}
