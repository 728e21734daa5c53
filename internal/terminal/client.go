package terminal

import "context"

// Client 定义交易终端的最小操作集。
// 实现必须把终端级失败（非零错误码、畸形响应）归一为 *Error 返回，
// 不得无错误地返回过期或残缺数据。
type Client interface {
	// Logon 登录资金账户，返回后续调用使用的会话号。
	Logon(ctx context.Context) (string, error)
	// Logout 释放会话。
	Logout(ctx context.Context, logonID string) error
	// SubmitOrder 提交限价委托，返回终端分配的请求号。
	SubmitOrder(ctx context.Context, logonID string, req OrderRequest) (string, error)
	// QueryOrder 按请求号查询委托状态。
	QueryOrder(ctx context.Context, logonID string, requestID string) (OrderStatus, error)
	// QueryTrades 按代码查询当日成交明细。
	QueryTrades(ctx context.Context, logonID string, code string) ([]TradeDetail, error)
}
