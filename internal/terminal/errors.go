package terminal

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error 统一封装终端各类调用返回的错误码与消息。
// 不同调用的响应字段不一致，在边界处归一成同一种错误形态，
// 下游的重试与报告逻辑只需识别这一种类型。
type Error struct {
	Op      string
	Code    int64
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("terminal: %s 失败 (code=%d): %s", e.Op, e.Code, e.Message)
}

// AsError 提取错误链中的终端错误。
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsRetryable 判断错误是否可重试。
// 终端的超时与限流同样以错误码形式返回，因此带码错误也进入重试，
// 只有上下文取消/超时直接终止。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var te *Error
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return true
}
