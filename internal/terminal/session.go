package terminal

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Session 表示一次已登录的终端会话，持有会话号并代理各类调用。
type Session struct {
	client  Client
	logonID string
}

// LogonID 返回终端分配的会话号。
func (s *Session) LogonID() string {
	return s.logonID
}

// SubmitOrder 在当前会话内提交委托。
func (s *Session) SubmitOrder(ctx context.Context, req OrderRequest) (string, error) {
	return s.client.SubmitOrder(ctx, s.logonID, req)
}

// QueryOrder 在当前会话内按请求号查询委托状态。
func (s *Session) QueryOrder(ctx context.Context, requestID string) (OrderStatus, error) {
	return s.client.QueryOrder(ctx, s.logonID, requestID)
}

// QueryTrades 在当前会话内按代码查询成交明细。
func (s *Session) QueryTrades(ctx context.Context, code string) ([]TradeDetail, error) {
	return s.client.QueryTrades(ctx, s.logonID, code)
}

// WithSession 登录后执行 fn，无论 fn 成功与否都保证登出。
// 登录失败直接返回，是批次处理中唯一的致命错误。
func WithSession(ctx context.Context, client Client, logger *zap.Logger, fn func(*Session) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	logonID, err := client.Logon(ctx)
	if err != nil {
		return fmt.Errorf("终端登录失败: %w", err)
	}
	logger.Info("终端登录成功", zap.String("logon_id", logonID))

	defer func() {
		if logoutErr := client.Logout(context.WithoutCancel(ctx), logonID); logoutErr != nil {
			logger.Warn("终端登出失败", zap.String("logon_id", logonID), zap.Error(logoutErr))
		} else {
			logger.Info("终端会话已释放", zap.String("logon_id", logonID))
		}
	}()

	return fn(&Session{client: client, logonID: logonID})
}
