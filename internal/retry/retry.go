package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Config 控制重试次数与退避延迟序列。
// Backoff 按第几次失败取对应延迟，超出长度后复用最后一个值。
type Config struct {
	Attempts int             `mapstructure:"attempts"`
	Backoff  []time.Duration `mapstructure:"backoff"`
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent 标记错误为不可重试，Do 遇到后立即放弃剩余尝试。
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent 判断错误是否被标记为不可重试。
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Do 以有限次数执行 fn，失败后按退避序列等待再试。
// 上下文取消、达到次数上限或遇到 Permanent 错误时返回最后一个错误。
func Do(ctx context.Context, cfg Config, logger *zap.Logger, operation string, fn func() error) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		start := time.Now()
		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info("重试后调用成功",
					zap.String("operation", operation),
					zap.Int("attempts", attempt),
					zap.Duration("latency", time.Since(start)),
				)
			}
			return nil
		}

		lastErr = err

		var pe *permanentError
		if errors.As(err, &pe) {
			logger.Error("调用失败且不可重试",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(pe.err),
			)
			return pe.err
		}

		if attempt == attempts {
			break
		}

		wait := backoffAt(cfg.Backoff, attempt-1)
		logger.Warn("调用失败，等待重试",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return fmt.Errorf("%s 重试 %d 次后仍失败: %w", operation, attempts, lastErr)
}

func backoffAt(schedule []time.Duration, idx int) time.Duration {
	if len(schedule) == 0 {
		return 0
	}
	if idx >= len(schedule) {
		idx = len(schedule) - 1
	}
	return schedule[idx]
}
