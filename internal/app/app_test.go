package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"astock-trader/internal/config"
	"astock-trader/internal/order"
	"astock-trader/internal/position"
	"astock-trader/internal/retry"
	"astock-trader/internal/store"
	"astock-trader/internal/terminal"
)

type scriptedTerminal struct {
	submitResponses []string
	orderStatus     map[string]terminal.OrderStatus
	trades          map[string][]terminal.TradeDetail
	submitted       []terminal.OrderRequest
}

func (s *scriptedTerminal) Logon(ctx context.Context) (string, error) { return "L1", nil }

func (s *scriptedTerminal) Logout(ctx context.Context, logonID string) error { return nil }

func (s *scriptedTerminal) SubmitOrder(ctx context.Context, logonID string, req terminal.OrderRequest) (string, error) {
	s.submitted = append(s.submitted, req)
	id := s.submitResponses[0]
	if len(s.submitResponses) > 1 {
		s.submitResponses = s.submitResponses[1:]
	}
	return id, nil
}

func (s *scriptedTerminal) QueryOrder(ctx context.Context, logonID string, requestID string) (terminal.OrderStatus, error) {
	return s.orderStatus[requestID], nil
}

func (s *scriptedTerminal) QueryTrades(ctx context.Context, logonID string, code string) ([]terminal.TradeDetail, error) {
	return s.trades[code], nil
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// 三个阶段串起来跑一遍：两日 CHO 抬升 -> 买入委托 -> 提交 -> 对账转持仓。
func TestPipelineBuySubmitReconcile(t *testing.T) {
	dataRoot := t.TempDir()
	cfg := &config.Config{
		Terminal: config.TerminalConfig{
			Retry: retry.Config{Attempts: 3},
		},
		Strategy: config.StrategyConfig{Short: 3, Long: 10, N: 6, MinHistoryDays: 2},
		Orders:   config.OrdersConfig{VolumePerTrade: 100},
		Database: config.DatabaseConfig{InMemory: true, MaxOpenConns: 1, MaxIdleConns: 1},
		Paths:    config.PathsConfig{DataRoot: dataRoot},
	}

	writeFile(t, cfg.Paths.PoolFile(), "600000.SH\n")
	writeFile(t, filepath.Join(cfg.Paths.StocksDir(), "600000.SH.csv"),
		"date,open,high,low,close,volume,cho\n"+
			"20240101,9.8,10.1,9.7,10.0,1000,1\n"+
			"20240102,10.0,10.2,9.9,10.0,1200,2\n")

	sqlite, err := store.NewSQLite(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	client := &scriptedTerminal{
		submitResponses: []string{"R1"},
		orderStatus: map[string]terminal.OrderStatus{
			"R1": {Status: "Success", OrderPrice: 11.0, TradedPrice: 10.05, TradedVolume: 100},
		},
		trades: map[string][]terminal.TradeDetail{
			"600000.SH": {{Code: "600000.SH", TradeID: "T1", TradedPrice: 10.05, TradedVolume: 100}},
		},
	}

	application, err := newApp(cfg, zap.NewNop(), sqlite, client)
	require.NoError(t, err)
	ctx := context.Background()

	batchPath, err := application.Signal(ctx, "20240102")
	require.NoError(t, err)

	orders, err := application.orders.Load("20240102")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "600000.SH", orders[0].Code)
	assert.Equal(t, "Buy", string(orders[0].Side))
	assert.Equal(t, int64(100), orders[0].Volume)
	assert.InDelta(t, 11.0, orders[0].LimitPrice, 1e-9)
	assert.Equal(t, order.StatusPending, orders[0].Status)
	assert.FileExists(t, batchPath)

	require.NoError(t, application.Execute(ctx, "20240102"))
	orders, err = application.orders.Load("20240102")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.StatusSubmitted, orders[0].Status)
	assert.Equal(t, "R1", orders[0].RequestID)
	require.Len(t, client.submitted, 1)
	assert.InDelta(t, 11.0, client.submitted[0].LimitPrice, 1e-9)

	require.NoError(t, application.Reconcile(ctx, "20240102"))
	pos, err := application.positions.Get(ctx, "600000.SH")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, position.StatusHolding, pos.Status)
	assert.Equal(t, int64(100), pos.HoldVolume)
}

// Execute/Reconcile 缺省日期时回落到最近批次。
func TestResolveTradeDateFallsBackToLatestBatch(t *testing.T) {
	dataRoot := t.TempDir()
	cfg := &config.Config{
		Database: config.DatabaseConfig{InMemory: true, MaxOpenConns: 1, MaxIdleConns: 1},
		Paths:    config.PathsConfig{DataRoot: dataRoot},
	}

	sqlite, err := store.NewSQLite(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	application, err := newApp(cfg, zap.NewNop(), sqlite, &scriptedTerminal{submitResponses: []string{"R1"}})
	require.NoError(t, err)

	_, err = application.orders.Save("20240101", nil)
	require.NoError(t, err)
	_, err = application.orders.Save("20240103", nil)
	require.NoError(t, err)

	resolved, err := application.resolveTradeDate("")
	require.NoError(t, err)
	assert.Equal(t, "20240103", resolved)

	resolved, err = application.resolveTradeDate("20240101")
	require.NoError(t, err)
	assert.Equal(t, "20240101", resolved)
}
