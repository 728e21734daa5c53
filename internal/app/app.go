package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"astock-trader/internal/config"
	"astock-trader/internal/market"
	"astock-trader/internal/order"
	"astock-trader/internal/pool"
	"astock-trader/internal/position"
	"astock-trader/internal/reconcile"
	"astock-trader/internal/signal"
	"astock-trader/internal/store"
	"astock-trader/internal/terminal"
)

// App 聚合核心依赖，每个子命令对应一个阶段方法。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store

	history    *market.HistoryStore
	positions  *position.Store
	engine     *signal.Engine
	orders     *order.Store
	builder    *order.Builder
	executor   *order.Executor
	reconciler *reconcile.Reconciler
}

// New 创建 App 实例并完成各阶段组件装配。
func New(cfg *config.Config, logger *zap.Logger, sqlite *store.Store) (*App, error) {
	return newApp(cfg, logger, sqlite, terminal.NewGatewayClient(cfg.Terminal, logger))
}

func newApp(cfg *config.Config, logger *zap.Logger, sqlite *store.Store, client terminal.Client) (*App, error) {
	positions, err := position.NewStore(sqlite.DB(), logger)
	if err != nil {
		return nil, err
	}

	orders, err := order.NewStore(cfg.Paths.PendingOrdersDir(), logger)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		store:      sqlite,
		history:    market.NewHistoryStore(cfg.Paths.StocksDir(), cfg.Strategy, logger),
		positions:  positions,
		engine:     signal.NewEngine(logger),
		orders:     orders,
		builder:    order.NewBuilder(orders, logger),
		executor:   order.NewExecutor(client, orders, cfg.Terminal.Retry, logger),
		reconciler: reconcile.NewReconciler(client, orders, positions,
			cfg.Paths.TradesDir(), cfg.Paths.ReportsDir(), logger),
	}, nil
}

// Signal 执行信号阶段：评估股票池全体标的并生成当日待执行批次。
// 返回批次文件路径；当日无信号时同样落盘空批次，保证幂等。
func (a *App) Signal(ctx context.Context, tradeDate string) (string, error) {
	if tradeDate == "" {
		tradeDate = time.Now().Format("20060102")
	}

	codes, err := pool.Load(a.cfg.Paths.PoolFile(), a.logger)
	if err != nil {
		return "", err
	}

	histories, err := a.history.LoadAll(codes)
	if err != nil {
		return "", err
	}

	var signals []signal.Signal
	for _, code := range codes {
		bars, ok := histories[code]
		if !ok {
			continue
		}

		pos, err := a.positions.Get(ctx, code)
		if err != nil {
			return "", err
		}

		generated, updated := a.engine.Evaluate(code, bars, pos)
		if err := a.positions.Upsert(ctx, updated); err != nil {
			return "", err
		}
		signals = append(signals, generated...)
	}

	a.logger.Info("信号评估完成",
		zap.String("trade_date", tradeDate),
		zap.Int("pool_size", len(codes)),
		zap.Int("signal_count", len(signals)),
	)
	return a.builder.Build(signals, tradeDate, a.cfg.Orders.VolumePerTrade)
}

// Execute 执行指定交易日的委托批次，日期为空时取最近批次。
func (a *App) Execute(ctx context.Context, tradeDate string) error {
	tradeDate, err := a.resolveTradeDate(tradeDate)
	if err != nil {
		return err
	}

	processed, err := a.executor.Execute(ctx, tradeDate)
	if err != nil {
		return fmt.Errorf("委托执行失败: %w", err)
	}
	a.logger.Info("委托执行完成",
		zap.String("trade_date", tradeDate),
		zap.Int("processed", processed),
	)
	return nil
}

// Reconcile 对指定交易日的批次进行成交核对并生成报告，日期为空时取最近批次。
func (a *App) Reconcile(ctx context.Context, tradeDate string) error {
	tradeDate, err := a.resolveTradeDate(tradeDate)
	if err != nil {
		return err
	}

	reportPath, err := a.reconciler.Reconcile(ctx, tradeDate)
	if err != nil {
		return fmt.Errorf("成交对账失败: %w", err)
	}
	a.logger.Info("成交对账完成",
		zap.String("trade_date", tradeDate),
		zap.String("report", reportPath),
	)
	return nil
}

// Run 为日常入口：信号评估、批次生成与委托执行一次完成。
func (a *App) Run(ctx context.Context, tradeDate string) error {
	if tradeDate == "" {
		tradeDate = time.Now().Format("20060102")
	}

	batchPath, err := a.Signal(ctx, tradeDate)
	if err != nil {
		return err
	}
	a.logger.Info("批次已生成", zap.String("path", batchPath))

	return a.Execute(ctx, tradeDate)
}

func (a *App) resolveTradeDate(tradeDate string) (string, error) {
	if tradeDate != "" {
		return tradeDate, nil
	}
	latest, err := a.orders.Latest()
	if err != nil {
		return "", fmt.Errorf("未指定交易日且无法定位最近批次: %w", err)
	}
	a.logger.Info("未指定交易日，使用最近批次", zap.String("trade_date", latest))
	return latest, nil
}
