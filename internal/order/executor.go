package order

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"astock-trader/internal/retry"
	"astock-trader/internal/terminal"
)

// Executor 打开一次终端会话，把批次内的委托按顺序逐笔提交。
// 终端按调用顺序分配请求号，次日对账依赖委托与请求号的一一对应，
// 因此同一会话内的提交不允许并发。
type Executor struct {
	client   terminal.Client
	store    *Store
	retryCfg retry.Config
	logger   *zap.Logger
}

// NewExecutor 创建委托执行器。
func NewExecutor(client terminal.Client, store *Store, retryCfg retry.Config, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		client:   client,
		store:    store,
		retryCfg: retryCfg,
		logger:   logger,
	}
}

// Execute 提交指定交易日的批次并把结果写回原批次文件。
// 单笔失败不中断批次，登录失败是唯一的批次级致命错误。
// 返回本轮处理（提交成功或失败）的委托数。
func (e *Executor) Execute(ctx context.Context, tradeDate string) (int, error) {
	orders, err := e.store.Load(tradeDate)
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		e.logger.Info("批次为空，无需执行", zap.String("trade_date", tradeDate))
		return 0, nil
	}

	processed := 0
	sessionErr := terminal.WithSession(ctx, e.client, e.logger, func(sess *terminal.Session) error {
		for i := range orders {
			ord := &orders[i]
			if ord.Status == StatusSubmitted {
				// 进程重启后重跑同一批次时跳过已提交的委托
				continue
			}

			if err := e.submitOne(ctx, sess, ord); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				ord.Status = StatusFailed
				ord.Notes = err.Error()
				e.logger.Error("委托提交失败",
					zap.String("code", ord.Code),
					zap.String("side", string(ord.Side)),
					zap.Error(err),
				)
			} else {
				e.logger.Info("委托已提交",
					zap.String("code", ord.Code),
					zap.String("side", string(ord.Side)),
					zap.Float64("limit_price", ord.LimitPrice),
					zap.String("request_id", ord.RequestID),
				)
			}
			processed++
		}
		return nil
	})

	// 会话异常中断时也要把已得到的结果写回
	if _, saveErr := e.store.Save(tradeDate, orders); saveErr != nil {
		if sessionErr != nil {
			return processed, fmt.Errorf("%w; 另有批次写回失败: %v", sessionErr, saveErr)
		}
		return processed, saveErr
	}

	return processed, sessionErr
}

func (e *Executor) submitOne(ctx context.Context, sess *terminal.Session, ord *PendingOrder) error {
	operation := fmt.Sprintf("torder %s", ord.Code)

	return retry.Do(ctx, e.retryCfg, e.logger, operation, func() error {
		requestID, err := sess.SubmitOrder(ctx, terminal.OrderRequest{
			Code:       ord.Code,
			Side:       string(ord.Side),
			LimitPrice: ord.LimitPrice,
			Volume:     ord.Volume,
		})
		if err != nil {
			if !terminal.IsRetryable(err) {
				return retry.Permanent(err)
			}
			return err
		}

		ord.RequestID = requestID
		ord.Status = StatusSubmitted
		return nil
	})
}
