package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	transient := errors.New("transient")
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	},
		WithMaxAttempts(5),
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(err error) bool { return errors.Is(err, transient) }),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	transient := errors.New("transient")
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return transient
	},
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(err error) bool { return true }),
	)
	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	}, WithMaxAttempts(5), WithInitialDelay(time.Millisecond))
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryableWrapperIsRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return Retryable(errors.New("flaky"))
		}
		return nil
	}, WithInitialDelay(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func(ctx context.Context) error {
		return errors.New("never retried")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithData(t *testing.T) {
	transient := errors.New("transient")
	calls := 0
	result, err := DoWithData(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", transient
		}
		return "done", nil
	},
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(err error) bool { return errors.Is(err, transient) }),
	)
	require.NoError(t, err)
	assert.Equal(t, "done", result)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Retryable(errors.New("x"))))
	assert.False(t, IsRetryable(errors.New("x")))
	assert.Nil(t, Retryable(nil))
}
