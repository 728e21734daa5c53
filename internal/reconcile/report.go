package reconcile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"astock-trader/internal/terminal"
)

var reportHeader = []string{
	"code", "side", "status", "order_price", "traded_price",
	"traded_volume", "order_number", "request_id",
}

// writeReport 输出成交明细 CSV 与对账摘要，返回摘要路径。
func (r *Reconciler) writeReport(tradeDate string, rows []ReportRow, trades []terminal.TradeDetail) (string, error) {
	csvPath, err := r.writeTradeCSV(tradeDate, rows)
	if err != nil {
		return "", err
	}
	r.logger.Info("成交报表已生成", zap.String("path", csvPath))

	summaryPath, err := r.writeSummary(tradeDate, rows, trades)
	if err != nil {
		return "", err
	}
	r.logger.Info("对账摘要已生成", zap.String("path", summaryPath))
	return summaryPath, nil
}

func (r *Reconciler) writeTradeCSV(tradeDate string, rows []ReportRow) (string, error) {
	if err := os.MkdirAll(r.tradesDir, 0o755); err != nil {
		return "", fmt.Errorf("reconcile: 创建报表目录失败: %w", err)
	}

	path := filepath.Join(r.tradesDir, tradeDate+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("reconcile: 创建报表文件失败: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(reportHeader); err != nil {
		return "", fmt.Errorf("reconcile: 写入报表表头失败: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Code,
			row.Side,
			row.Status,
			formatPrice(row.OrderPrice),
			formatPrice(row.TradedPrice),
			strconv.FormatInt(row.TradedVolume, 10),
			row.OrderNumber,
			row.RequestID,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("reconcile: 写入报表行失败: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("reconcile: 刷新报表失败: %w", err)
	}
	return path, nil
}

func (r *Reconciler) writeSummary(tradeDate string, rows []ReportRow, trades []terminal.TradeDetail) (string, error) {
	if err := os.MkdirAll(r.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("reconcile: 创建摘要目录失败: %w", err)
	}

	var success, queryErrors int
	for _, row := range rows {
		switch {
		case strings.HasPrefix(strings.ToLower(row.Status), "success"):
			success++
		case row.Status == StatusQueryError:
			queryErrors++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Reconcile Report %s\n\n", tradeDate)
	fmt.Fprintf(&b, "- Total orders: %d\n", len(rows))
	fmt.Fprintf(&b, "- Success: %d\n", success)
	fmt.Fprintf(&b, "- Query errors: %d\n", queryErrors)
	fmt.Fprintf(&b, "- Trades fetched: %d\n\n", len(trades))
	b.WriteString("## Trades\n")
	for _, trade := range trades {
		fmt.Fprintf(&b, "- %s trade_id=%s volume=%d price=%s time=%s\n",
			trade.Code, trade.TradeID, trade.TradedVolume,
			formatPrice(trade.TradedPrice), trade.TradeTime)
	}

	path := filepath.Join(r.reportsDir, tradeDate+"_reconcile.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("reconcile: 写入摘要失败: %w", err)
	}
	return path, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
