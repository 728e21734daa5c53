package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"astock-trader/internal/order"
	"astock-trader/internal/position"
	"astock-trader/internal/terminal"
)

// ReportRow 为结算报告中的一行，一次对账写成，不作为权威状态。
type ReportRow struct {
	Code         string
	Side         string
	Status       string
	OrderPrice   float64
	TradedPrice  float64
	TradedVolume int64
	OrderNumber  string
	RequestID    string
}

// StatusQueryError 标记委托状态查询被终端拒绝的行。
const StatusQueryError = "QueryError"

// Reconciler 在次日核对已提交委托的成交情况并回写持仓。
type Reconciler struct {
	client     terminal.Client
	orders     *order.Store
	positions  *position.Store
	tradesDir  string
	reportsDir string
	logger     *zap.Logger
}

// NewReconciler 创建对账器。
func NewReconciler(client terminal.Client, orders *order.Store, positions *position.Store,
	tradesDir string, reportsDir string, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		client:     client,
		orders:     orders,
		positions:  positions,
		tradesDir:  tradesDir,
		reportsDir: reportsDir,
		logger:     logger,
	}
}

// Reconcile 核对指定交易日的批次并生成结算报告，返回报告路径。
// 提交失败（无请求号）的委托没有可核对内容，跳过并告警；
// 单笔查询被终端拒绝记为 QueryError 行，不中断整轮对账。
func (r *Reconciler) Reconcile(ctx context.Context, tradeDate string) (string, error) {
	orders, err := r.orders.Load(tradeDate)
	if err != nil {
		return "", err
	}

	var rows []ReportRow
	var trades []terminal.TradeDetail

	if len(orders) == 0 {
		r.logger.Info("批次为空，生成空报告", zap.String("trade_date", tradeDate))
		return r.writeReport(tradeDate, rows, trades)
	}

	sessionErr := terminal.WithSession(ctx, r.client, r.logger, func(sess *terminal.Session) error {
		for _, ord := range orders {
			if ord.RequestID == "" {
				r.logger.Warn("委托缺少请求号，跳过对账",
					zap.String("code", ord.Code),
					zap.String("status", string(ord.Status)),
				)
				continue
			}

			row := r.queryOrderRow(ctx, sess, ord)
			rows = append(rows, row)

			details, tradeErr := sess.QueryTrades(ctx, ord.Code)
			if tradeErr != nil {
				r.logger.Warn("成交明细查询失败",
					zap.String("code", ord.Code),
					zap.Error(tradeErr),
				)
			} else {
				trades = append(trades, details...)
			}

			if err := r.updatePosition(ctx, ord, row); err != nil {
				return err
			}
		}
		return nil
	})
	if sessionErr != nil {
		return "", sessionErr
	}

	return r.writeReport(tradeDate, rows, trades)
}

func (r *Reconciler) queryOrderRow(ctx context.Context, sess *terminal.Session, ord order.PendingOrder) ReportRow {
	row := ReportRow{
		Code:       ord.Code,
		Side:       string(ord.Side),
		OrderPrice: ord.LimitPrice,
		RequestID:  ord.RequestID,
	}

	status, err := sess.QueryOrder(ctx, ord.RequestID)
	if err != nil {
		// 终端拒绝查询不视为整轮失败，记为 QueryError 行供人工跟进
		row.Status = StatusQueryError
		row.TradedVolume = 0
		r.logger.Warn("委托状态查询失败",
			zap.String("code", ord.Code),
			zap.String("request_id", ord.RequestID),
			zap.Error(err),
		)
		return row
	}

	row.Status = status.Status
	if row.Status == "" {
		row.Status = "Unknown"
	}
	if status.OrderPrice > 0 {
		row.OrderPrice = status.OrderPrice
	}
	row.TradedPrice = status.TradedPrice
	row.TradedVolume = status.TradedVolume
	row.OrderNumber = status.OrderNumber
	return row
}

// updatePosition 按成交结果回写持仓。
// 买向只要有成交量即转持仓（部分成交同样转入，报告中保留原始量供人工复核）；
// 卖向需成交量覆盖当前持仓量才转空仓；其余情况一律不动。
func (r *Reconciler) updatePosition(ctx context.Context, ord order.PendingOrder, row ReportRow) error {
	pos, err := r.positions.Get(ctx, ord.Code)
	if err != nil {
		return err
	}
	if pos == nil {
		pos = position.NewFlat(ord.Code)
	}

	switch {
	case ord.Side == "Buy" && row.TradedVolume > 0:
		pos.Status = position.StatusHolding
		pos.HoldVolume = row.TradedVolume
		price := row.TradedPrice
		pos.LastBuyPrice = &price
		pos.PendingSellSince = ""
		r.logger.Info("买入成交确认，转入持仓",
			zap.String("code", ord.Code),
			zap.Int64("traded_volume", row.TradedVolume),
			zap.Float64("traded_price", row.TradedPrice),
		)

	// 零成交不触发翻转：hold_volume 暂为 0 的过渡记录上 0>=0 也不得清仓
	case ord.Side == "Sell" && row.TradedVolume > 0 && row.TradedVolume >= pos.HoldVolume:
		pos.Status = position.StatusFlat
		pos.HoldVolume = 0
		price := row.TradedPrice
		pos.LastSellPrice = &price
		pos.PendingSellSince = ""
		r.logger.Info("卖出成交确认，转为空仓",
			zap.String("code", ord.Code),
			zap.Float64("traded_price", row.TradedPrice),
		)

	default:
		// 部分成交/未成交/查询失败均不动仓位，留待人工跟进
		r.logger.Info("成交结果不满足状态翻转条件，持仓不变",
			zap.String("code", ord.Code),
			zap.String("side", string(ord.Side)),
			zap.String("status", row.Status),
			zap.Int64("traded_volume", row.TradedVolume),
		)
	}

	pos.UpdateTime = time.Now().UTC().Format(time.RFC3339)
	return r.positions.Upsert(ctx, pos)
}
