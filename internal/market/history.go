package market

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"astock-trader/internal/config"
)

// HistoryStore 读取上游拉取服务落盘的行情历史文件。
// 每只标的一个 CSV，位于 <data_root>/stocks/<code>.csv。
type HistoryStore struct {
	dir      string
	strategy config.StrategyConfig
	logger   *zap.Logger
}

// NewHistoryStore 创建行情历史读取器。
func NewHistoryStore(dir string, strategy config.StrategyConfig, logger *zap.Logger) *HistoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryStore{dir: dir, strategy: strategy, logger: logger}
}

// Load 读取单只标的的历史日线，按日期升序、同日去重（保留后写入的行）。
// 文件缺少 CHO 列时就地补算。
func (h *HistoryStore) Load(code string) ([]Bar, error) {
	path := filepath.Join(h.dir, code+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("market: 打开行情文件失败 (%s): %w", code, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("market: 解析行情文件失败 (%s): %w", code, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	cols := columnIndex(records[0])
	required := []string{"date", "open", "high", "low", "close", "volume"}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("market: 行情文件缺少 %s 列 (%s)", name, code)
		}
	}
	choIdx, hasCHO := cols["cho"]
	nameIdx, hasName := cols["sec_name"]

	byDate := make(map[string]Bar, len(records)-1)
	for _, record := range records[1:] {
		bar, parseErr := parseBar(record, cols)
		if parseErr != nil {
			h.logger.Warn("跳过无法解析的行情行", zap.String("code", code), zap.Error(parseErr))
			continue
		}
		if hasCHO && choIdx < len(record) {
			bar.CHO = parseFloat(record[choIdx])
		}
		if hasName && nameIdx < len(record) {
			bar.SecurityName = strings.TrimSpace(record[nameIdx])
		}
		byDate[bar.Date] = bar
	}

	bars := make([]Bar, 0, len(byDate))
	for _, bar := range byDate {
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	return EnsureCHO(bars, hasCHO, h.strategy)
}

// LoadAll 并发读取多只标的的历史，文件缺失或解析失败的标的跳过并告警。
// 磁盘读取可以并发，后续的信号评估仍按顺序进行。
func (h *HistoryStore) LoadAll(codes []string) (map[string][]Bar, error) {
	var mu sync.Mutex
	histories := make(map[string][]Bar, len(codes))

	group := new(errgroup.Group)
	group.SetLimit(8)

	for _, code := range codes {
		code := code
		group.Go(func() error {
			bars, err := h.Load(code)
			if err != nil {
				h.logger.Warn("读取行情历史失败，跳过该标的", zap.String("code", code), zap.Error(err))
				return nil
			}
			mu.Lock()
			histories[code] = bars
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return histories, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func parseBar(record []string, cols map[string]int) (Bar, error) {
	get := func(name string) (string, error) {
		idx := cols[name]
		if idx >= len(record) {
			return "", fmt.Errorf("行缺少 %s 字段", name)
		}
		return strings.TrimSpace(record[idx]), nil
	}

	date, err := get("date")
	if err != nil {
		return Bar{}, err
	}
	if date == "" {
		return Bar{}, fmt.Errorf("日期为空")
	}

	bar := Bar{Date: date}
	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
		{"volume", &bar.Volume},
	}
	for _, f := range fields {
		raw, getErr := get(f.name)
		if getErr != nil {
			return Bar{}, getErr
		}
		value, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			return Bar{}, fmt.Errorf("%s 字段不是数字: %q", f.name, raw)
		}
		*f.dst = value
	}

	return bar, nil
}

func parseFloat(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return value
}
