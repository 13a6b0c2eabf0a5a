package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) *RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialDelay = time.Millisecond
	return cfg
}

func TestRetry_SucceedsAfterFailure(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastRetry(2), OpChildren, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("connection reset")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(3), OpDetail, func(context.Context) (int, error) {
		calls++
		return 0, &CallError{Op: OpDetail, Err: errors.New("503")}
	})

	assert.Equal(t, 3, calls)
	assert.True(t, IsCallError(err))
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestRetry_ParseErrorsAreNotRetried(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastRetry(3), OpChildren, func(context.Context) ([]Candidate, error) {
		calls++
		return nil, &ParseError{Op: OpChildren, Err: ErrEmptyResult}
	})

	assert.Equal(t, 1, calls)
	assert.True(t, IsParseError(err))
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Retry(ctx, fastRetry(3), OpSummarize, func(context.Context) (string, error) {
		calls++
		return "", nil
	})

	assert.Equal(t, 0, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoRetry(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), NoRetry(), OpChildren, func(context.Context) (string, error) {
		calls++
		return "", assert.AnError
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, assert.AnError)
}
