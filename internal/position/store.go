package position

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Store 以 SQLite 持久化持仓记录，按代码幂等覆盖。
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore 创建持仓存储并初始化表结构。
func NewStore(db *sql.DB, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("position: 数据库实例不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store := &Store{db: db, logger: logger}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `CREATE TABLE IF NOT EXISTS positions (
		code TEXT PRIMARY KEY,
		status INTEGER NOT NULL,
		hold_volume INTEGER NOT NULL DEFAULT 0,
		last_buy_price REAL,
		last_sell_price REAL,
		pending_sell_since TEXT,
		last_signal_time TEXT,
		update_time TEXT NOT NULL
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("position: 初始化表结构失败: %w", err)
	}
	return nil
}

// Upsert 按代码写入或覆盖持仓记录。
func (s *Store) Upsert(ctx context.Context, pos *Position) error {
	if pos == nil || pos.Code == "" {
		return errors.New("position: 持仓记录缺少代码")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO positions (code, status, hold_volume, last_buy_price, last_sell_price,
			pending_sell_since, last_signal_time, update_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
			status=excluded.status,
			hold_volume=excluded.hold_volume,
			last_buy_price=excluded.last_buy_price,
			last_sell_price=excluded.last_sell_price,
			pending_sell_since=excluded.pending_sell_since,
			last_signal_time=excluded.last_signal_time,
			update_time=excluded.update_time;`,
		pos.Code, int(pos.Status), pos.HoldVolume,
		nullableFloat(pos.LastBuyPrice), nullableFloat(pos.LastSellPrice),
		nullableString(pos.PendingSellSince), nullableString(pos.LastSignalTime),
		pos.UpdateTime,
	)
	if err != nil {
		return fmt.Errorf("position: 写入持仓记录失败 (%s): %w", pos.Code, err)
	}
	return nil
}

// Get 按代码读取持仓记录，不存在时返回 nil。
func (s *Store) Get(ctx context.Context, code string) (*Position, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT code, status, hold_volume, last_buy_price, last_sell_price,
			pending_sell_since, last_signal_time, update_time
		 FROM positions WHERE code = ?`, code)

	pos, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("position: 读取持仓记录失败 (%s): %w", code, err)
	}
	return pos, nil
}

// ListAll 返回全部持仓记录。
func (s *Store) ListAll(ctx context.Context) ([]*Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, status, hold_volume, last_buy_price, last_sell_price,
			pending_sell_since, last_signal_time, update_time
		 FROM positions ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("position: 查询持仓列表失败: %w", err)
	}
	defer rows.Close()

	var positions []*Position
	for rows.Next() {
		pos, scanErr := scanPosition(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("position: 解析持仓记录失败: %w", scanErr)
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("position: 遍历持仓记录失败: %w", err)
	}
	return positions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row rowScanner) (*Position, error) {
	var (
		pos          Position
		status       int
		buyPrice     sql.NullFloat64
		sellPrice    sql.NullFloat64
		pendingSince sql.NullString
		signalTime   sql.NullString
	)

	if err := row.Scan(&pos.Code, &status, &pos.HoldVolume,
		&buyPrice, &sellPrice, &pendingSince, &signalTime, &pos.UpdateTime); err != nil {
		return nil, err
	}

	pos.Status = Status(status)
	if buyPrice.Valid {
		v := buyPrice.Float64
		pos.LastBuyPrice = &v
	}
	if sellPrice.Valid {
		v := sellPrice.Float64
		pos.LastSellPrice = &v
	}
	pos.PendingSellSince = pendingSince.String
	pos.LastSignalTime = signalTime.String
	return &pos, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
