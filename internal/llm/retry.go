package llm

import (
	"context"
	"errors"
	"time"
)

const (
	defaultMaxRetries = 5
	baseRetryDelay    = 500 * time.Millisecond
	maxRetryDelay     = 8 * time.Second
)

// retries fn on retryable failures with exponential backoff; the budget belongs to
// the provider client so callers never retry on their own
func withRetry[T any](ctx context.Context, maxRetries int, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	delay := baseRetryDelay

	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		if attempt >= maxRetries || !isRetryable(err) {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		delay = min(delay*2, maxRetryDelay)
	}
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}

	// transport failures (connection reset, timeouts inside the client)
	var transportErr *transportError
	return errors.As(err, &transportErr)
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return "failed to send request: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }
