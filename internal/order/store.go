package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrNoBatch 表示指定交易日没有已生成的委托批次。
var ErrNoBatch = errors.New("order: 没有可用的委托批次")

// Store 以 JSON 文件持久化委托批次，一个交易日一个文件，整体覆盖写、整体读回。
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore 创建批次存储并确保目录存在。
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("order: 创建批次目录失败: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Path 返回指定交易日批次文件的路径。
func (s *Store) Path(tradeDate string) string {
	return filepath.Join(s.dir, tradeDate+".json")
}

// Save 整体覆盖写入指定交易日的批次，重复生成同日批次即为重建。
func (s *Store) Save(tradeDate string, orders []PendingOrder) (string, error) {
	if tradeDate == "" {
		return "", errors.New("order: 交易日不能为空")
	}

	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return "", fmt.Errorf("order: 序列化批次失败: %w", err)
	}

	path := s.Path(tradeDate)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("order: 写入批次文件失败: %w", err)
	}

	s.logger.Info("委托批次已落盘",
		zap.String("trade_date", tradeDate),
		zap.Int("orders", len(orders)),
		zap.String("path", path),
	)
	return path, nil
}

// Load 读回指定交易日的完整批次。
func (s *Store) Load(tradeDate string) ([]PendingOrder, error) {
	data, err := os.ReadFile(s.Path(tradeDate))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w (%s)", ErrNoBatch, tradeDate)
		}
		return nil, fmt.Errorf("order: 读取批次文件失败: %w", err)
	}

	var orders []PendingOrder
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("order: 解析批次文件失败: %w", err)
	}
	return orders, nil
}

// List 返回已落盘批次的交易日列表，按日期降序。
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("order: 枚举批次目录失败: %w", err)
	}

	var dates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// Latest 返回最近一个交易日，没有任何批次时返回 ErrNoBatch。
func (s *Store) Latest() (string, error) {
	dates, err := s.List()
	if err != nil {
		return "", err
	}
	if len(dates) == 0 {
		return "", ErrNoBatch
	}
	return dates[0], nil
}
