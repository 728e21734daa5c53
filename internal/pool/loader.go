package pool

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// codePattern 约束六位代码加交易所后缀的标准格式，如 600000.SH。
var codePattern = regexp.MustCompile(`^\d{6}\.(SH|SZ|BJ)$`)

// IsValidCode 判断证券代码是否为合法的 A 股带后缀代码。
func IsValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Load 读取股票池文件并返回去重后的合法代码列表，保留首次出现顺序。
// 空行与 # 开头的注释行跳过，非法代码告警后丢弃，不中断加载。
func Load(path string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pool: 打开股票池文件失败: %w", err)
	}
	defer file.Close()

	seen := make(map[string]struct{})
	var codes []string

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code := strings.ToUpper(line)
		if !IsValidCode(code) {
			logger.Warn("股票池中存在非法代码，已跳过",
				zap.String("path", path),
				zap.Int("line", lineNo),
				zap.String("code", line),
			)
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pool: 读取股票池文件失败: %w", err)
	}

	logger.Info("股票池加载完成",
		zap.String("path", path),
		zap.Int("count", len(codes)),
	)
	return codes, nil
}
