package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), Config{Attempts: 3, Backoff: []time.Duration{time.Millisecond}}, nil, "test_op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	cause := errors.New("still broken")
	calls := 0
	err := Do(context.Background(), Config{Attempts: 3, Backoff: []time.Duration{time.Millisecond}}, nil, "test_op", func() error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	cause := errors.New("rejected")
	calls := 0
	err := Do(context.Background(), Config{Attempts: 5}, nil, "test_op", func() error {
		calls++
		return Permanent(cause)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, Config{Attempts: 3}, nil, "test_op", func() error {
		return errors.New("should not matter")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoffScheduleReusesLastDelay(t *testing.T) {
	t.Parallel()

	schedule := []time.Duration{time.Second, 2 * time.Second}
	assert.Equal(t, time.Second, backoffAt(schedule, 0))
	assert.Equal(t, 2*time.Second, backoffAt(schedule, 1))
	assert.Equal(t, 2*time.Second, backoffAt(schedule, 5))
	assert.Equal(t, time.Duration(0), backoffAt(nil, 0))
}
