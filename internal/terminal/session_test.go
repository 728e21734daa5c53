package terminal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	logonErr error
	calls    []string
}

func (f *fakeClient) Logon(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "logon")
	if f.logonErr != nil {
		return "", f.logonErr
	}
	return "L1", nil
}

func (f *fakeClient) Logout(ctx context.Context, logonID string) error {
	f.calls = append(f.calls, "logout:"+logonID)
	return nil
}

func (f *fakeClient) SubmitOrder(ctx context.Context, logonID string, req OrderRequest) (string, error) {
	f.calls = append(f.calls, "submit:"+req.Code)
	return "R1", nil
}

func (f *fakeClient) QueryOrder(ctx context.Context, logonID string, requestID string) (OrderStatus, error) {
	f.calls = append(f.calls, "query_order:"+requestID)
	return OrderStatus{}, nil
}

func (f *fakeClient) QueryTrades(ctx context.Context, logonID string, code string) ([]TradeDetail, error) {
	f.calls = append(f.calls, "query_trades:"+code)
	return nil, nil
}

func TestWithSessionLogsOutOnSuccess(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	err := WithSession(context.Background(), client, nil, func(s *Session) error {
		_, submitErr := s.SubmitOrder(context.Background(), OrderRequest{Code: "600000.SH"})
		return submitErr
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"logon", "submit:600000.SH", "logout:L1"}, client.calls)
}

func TestWithSessionLogsOutOnError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	boom := errors.New("boom")
	err := WithSession(context.Background(), client, nil, func(s *Session) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"logon", "logout:L1"}, client.calls)
}

func TestWithSessionAbortsWhenLogonFails(t *testing.T) {
	t.Parallel()

	client := &fakeClient{logonErr: &Error{Op: "tlogon", Code: 40101, Message: "密码错误"}}
	called := false
	err := WithSession(context.Background(), client, nil, func(s *Session) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, []string{"logon"}, client.calls)
}

func TestErrorNormalization(t *testing.T) {
	t.Parallel()

	var err error = &Error{Op: "torder", Code: -40522006, Message: "下单超时"}
	te, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, int64(-40522006), te.Code)
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(context.Canceled))
}
