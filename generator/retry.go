package generator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryConfig configures how often a failed generation call is attempted again.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	RetryableErrors func(error) bool // Determines if an error should trigger retry
}

// DefaultRetryConfig retries a failed call once after one second. Parse failures and
// cancelled or expired contexts are not retried.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   2,
		InitialDelay:  time.Second,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: func(err error) bool {
			return !IsParseError(err) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		},
	}
}

// NoRetry performs exactly one attempt.
func NoRetry() *RetryConfig {
	return &RetryConfig{MaxAttempts: 1}
}

// Retry runs fn until it succeeds, returns a non-retryable error, the attempts are
// exhausted or ctx is done.
func Retry[T any](ctx context.Context, config *RetryConfig, op string, fn func(context.Context) (T, error)) (T, error) {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := max(config.MaxAttempts, 1)

	var zero T
	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s cancelled: %w", op, ctx.Err())
		default:
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if config.RetryableErrors != nil && !config.RetryableErrors(err) {
			return zero, err
		}

		// Don't sleep after the last attempt
		if attempt < attempts {
			select {
			case <-time.After(delay):
				if config.BackoffFactor > 0 {
					delay = time.Duration(float64(delay) * config.BackoffFactor)
				}
				if config.MaxDelay > 0 {
					delay = min(delay, config.MaxDelay)
				}
			case <-ctx.Done():
				return zero, fmt.Errorf("%s cancelled during backoff: %w", op, ctx.Err())
			}
		}
	}

	if attempts == 1 {
		return zero, lastErr
	}
	return zero, fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}
