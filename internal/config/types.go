package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/multierr"

	"astock-trader/internal/retry"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	Database DatabaseConfig `mapstructure:"database"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// TerminalConfig 描述交易终端网关地址与资金账户信息。
type TerminalConfig struct {
	GatewayURL   string        `mapstructure:"gateway_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	BrokerID     string        `mapstructure:"broker_id"`
	DepartmentID string        `mapstructure:"department_id"`
	LogonAccount string        `mapstructure:"logon_account"`
	Password     string        `mapstructure:"password"`
	AccountType  string        `mapstructure:"account_type"`
	Retry        retry.Config  `mapstructure:"retry"`
}

// StrategyConfig 控制 CHO 指标参数。
type StrategyConfig struct {
	Short          int `mapstructure:"short"`
	Long           int `mapstructure:"long"`
	N              int `mapstructure:"n"`
	MinHistoryDays int `mapstructure:"min_history_days"`
}

// OrdersConfig 控制委托生成行为。
type OrdersConfig struct {
	VolumePerTrade int64 `mapstructure:"volume_per_trade"`
}

// DatabaseConfig 管理数据库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// PathsConfig 管理数据文件根目录。
type PathsConfig struct {
	DataRoot string `mapstructure:"data_root"`
}

// StocksDir 返回行情历史文件目录。
func (p PathsConfig) StocksDir() string {
	return filepath.Join(p.DataRoot, "stocks")
}

// PendingOrdersDir 返回待执行委托批次目录。
func (p PathsConfig) PendingOrdersDir() string {
	return filepath.Join(p.DataRoot, "pending_orders")
}

// TradesDir 返回成交回报目录。
func (p PathsConfig) TradesDir() string {
	return filepath.Join(p.DataRoot, "trades")
}

// ReportsDir 返回对账报告目录。
func (p PathsConfig) ReportsDir() string {
	return filepath.Join(p.DataRoot, "reports")
}

// PoolFile 返回股票池文件路径。
func (p PathsConfig) PoolFile() string {
	return filepath.Join(p.DataRoot, "stock_pool.csv")
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Terminal.GatewayURL == "" {
		err = multierr.Append(err, errors.New("terminal.gateway_url 不能为空"))
	}
	if c.Terminal.Timeout <= 0 {
		err = multierr.Append(err, errors.New("terminal.timeout 必须大于0"))
	}
	if c.Terminal.BrokerID == "" {
		err = multierr.Append(err, errors.New("terminal.broker_id 不能为空"))
	}
	if c.Terminal.LogonAccount == "" {
		err = multierr.Append(err, errors.New("terminal.logon_account 不能为空"))
	}
	if c.Terminal.Password == "" {
		err = multierr.Append(err, errors.New("terminal.password 不能为空"))
	}
	if c.Terminal.AccountType == "" {
		err = multierr.Append(err, errors.New("terminal.account_type 不能为空"))
	}
	if c.Terminal.Retry.Attempts <= 0 {
		err = multierr.Append(err, errors.New("terminal.retry.attempts 必须大于0"))
	}
	for _, d := range c.Terminal.Retry.Backoff {
		if d < 0 {
			err = multierr.Append(err, errors.New("terminal.retry.backoff 不能为负"))
			break
		}
	}
	if c.Strategy.Short <= 0 || c.Strategy.Long <= 0 {
		err = multierr.Append(err, errors.New("strategy.short 与 strategy.long 必须大于0"))
	}
	if c.Strategy.Short >= c.Strategy.Long {
		err = multierr.Append(err, errors.New("strategy.short 必须小于 strategy.long"))
	}
	if c.Strategy.N <= 0 {
		err = multierr.Append(err, errors.New("strategy.n 必须大于0"))
	}
	if c.Strategy.MinHistoryDays < 2 {
		err = multierr.Append(err, errors.New("strategy.min_history_days 不能小于2"))
	}
	if c.Orders.VolumePerTrade <= 0 {
		err = multierr.Append(err, errors.New("orders.volume_per_trade 必须大于0"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Paths.DataRoot == "" {
		err = multierr.Append(err, errors.New("paths.data_root 不能为空"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
