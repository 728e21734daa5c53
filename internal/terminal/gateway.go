package terminal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"astock-trader/internal/config"
)

// GatewayClient 通过本机 HTTP 桥接服务访问交易终端。
// 终端本体运行在独立进程中，网关把会话操作暴露为简单的 JSON 接口。
type GatewayClient struct {
	http   *resty.Client
	cfg    config.TerminalConfig
	logger *zap.Logger
}

// NewGatewayClient 创建终端网关客户端。
func NewGatewayClient(cfg config.TerminalConfig, logger *zap.Logger) *GatewayClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New()
	client.SetBaseURL(cfg.GatewayURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Content-Type", "application/json")

	return &GatewayClient{
		http:   client,
		cfg:    cfg,
		logger: logger,
	}
}

type gatewayEnvelope struct {
	ErrorCode int64           `json:"error_code"`
	ErrorMsg  string          `json:"error_msg"`
	Data      json.RawMessage `json:"data"`
}

// Logon 登录资金账户。
func (c *GatewayClient) Logon(ctx context.Context) (string, error) {
	body := map[string]string{
		"broker_id":     c.cfg.BrokerID,
		"department_id": c.cfg.DepartmentID,
		"logon_account": c.cfg.LogonAccount,
		"password":      c.cfg.Password,
		"account_type":  c.cfg.AccountType,
	}

	var data struct {
		LogonID string `json:"logon_id"`
	}
	if err := c.call(ctx, "tlogon", "/api/tlogon", body, &data); err != nil {
		return "", err
	}
	if data.LogonID == "" {
		return "", &Error{Op: "tlogon", Code: -1, Message: "网关未返回会话号"}
	}
	return data.LogonID, nil
}

// Logout 释放会话。
func (c *GatewayClient) Logout(ctx context.Context, logonID string) error {
	body := map[string]string{"logon_id": logonID}
	return c.call(ctx, "tlogout", "/api/tlogout", body, nil)
}

// SubmitOrder 提交限价委托并返回终端请求号。
func (c *GatewayClient) SubmitOrder(ctx context.Context, logonID string, req OrderRequest) (string, error) {
	body := map[string]interface{}{
		"logon_id":    logonID,
		"code":        req.Code,
		"side":        req.Side,
		"limit_price": req.LimitPrice,
		"volume":      req.Volume,
		"order_type":  "LMT",
	}

	var data struct {
		RequestID string `json:"request_id"`
	}
	if err := c.call(ctx, "torder", "/api/torder", body, &data); err != nil {
		return "", err
	}
	if data.RequestID == "" {
		return "", &Error{Op: "torder", Code: -1, Message: "网关未返回请求号"}
	}
	return data.RequestID, nil
}

// QueryOrder 按请求号查询委托状态。
func (c *GatewayClient) QueryOrder(ctx context.Context, logonID string, requestID string) (OrderStatus, error) {
	body := map[string]string{
		"logon_id":   logonID,
		"request_id": requestID,
	}

	var data OrderStatus
	if err := c.call(ctx, "tquery_order", "/api/tquery/order", body, &data); err != nil {
		return OrderStatus{}, err
	}
	return data, nil
}

// QueryTrades 按代码查询当日成交明细。
func (c *GatewayClient) QueryTrades(ctx context.Context, logonID string, code string) ([]TradeDetail, error) {
	body := map[string]string{
		"logon_id": logonID,
		"code":     code,
	}

	var data struct {
		Trades []TradeDetail `json:"trades"`
	}
	if err := c.call(ctx, "tquery_trade", "/api/tquery/trade", body, &data); err != nil {
		return nil, err
	}
	return data.Trades, nil
}

// call 执行一次网关调用并把响应归一为 *Error 或业务数据。
func (c *GatewayClient) call(ctx context.Context, op string, path string, body interface{}, out interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return fmt.Errorf("terminal: %s 请求失败: %w", op, err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("terminal: %s 网关返回异常状态 %d", op, resp.StatusCode())
	}

	var envelope gatewayEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("terminal: %s 响应解析失败: %w", op, err)
	}

	if envelope.ErrorCode != 0 {
		return &Error{Op: op, Code: envelope.ErrorCode, Message: envelope.ErrorMsg}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("terminal: %s 数据解析失败: %w", op, err)
		}
	}

	c.logger.Debug("终端网关调用完成", zap.String("operation", op))
	return nil
}
