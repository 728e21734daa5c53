package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"astock-trader/internal/app"
	"astock-trader/internal/config"
	"astock-trader/internal/log"
	"astock-trader/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	app    *app.App
}

// setup 按配置依次装配日志、数据库与各阶段组件。
func setup(configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	sqliteStore, err := store.NewSQLite(cfg.Database)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("初始化数据库失败: %w", err)
	}

	application, err := app.New(cfg, logger, sqliteStore)
	if err != nil {
		_ = sqliteStore.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("初始化应用失败: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, store: sqliteStore, app: application}, nil
}

func (r *runtime) close() {
	_ = r.store.Close()
	_ = r.logger.Sync()
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "trader",
		Short:         "A 股日终交易流水线：信号评估、委托执行与成交对账",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"配置文件路径，默认使用 configs/config.yaml")

	// 各阶段共用同一套装配逻辑，日期为空时由阶段自行决定默认值
	stage := func(fn func(ctx context.Context, rt *runtime, tradeDate string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			rt, err := setup(configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var tradeDate string
			if len(args) > 0 {
				tradeDate = args[0]
			}
			return fn(ctx, rt, tradeDate)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "signal [trade-date]",
			Short: "评估股票池信号并生成待执行委托批次",
			Args:  cobra.MaximumNArgs(1),
			RunE: stage(func(ctx context.Context, rt *runtime, tradeDate string) error {
				path, err := rt.app.Signal(ctx, tradeDate)
				if err != nil {
					return err
				}
				rt.logger.Info("批次已生成", zap.String("path", path))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "execute [trade-date]",
			Short: "提交指定交易日的委托批次，缺省取最近批次",
			Args:  cobra.MaximumNArgs(1),
			RunE: stage(func(ctx context.Context, rt *runtime, tradeDate string) error {
				return rt.app.Execute(ctx, tradeDate)
			}),
		},
		&cobra.Command{
			Use:   "reconcile [trade-date]",
			Short: "核对指定交易日的成交并生成对账报告，缺省取最近批次",
			Args:  cobra.MaximumNArgs(1),
			RunE: stage(func(ctx context.Context, rt *runtime, tradeDate string) error {
				return rt.app.Reconcile(ctx, tradeDate)
			}),
		},
		&cobra.Command{
			Use:   "run [trade-date]",
			Short: "信号评估与委托执行一次完成，日常收盘后入口",
			Args:  cobra.MaximumNArgs(1),
			RunE: stage(func(ctx context.Context, rt *runtime, tradeDate string) error {
				return rt.app.Run(ctx, tradeDate)
			}),
		},
	)
	return root
}
