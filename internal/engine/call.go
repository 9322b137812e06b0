package engine

import (
	"context"
	"errors"
	"time"

	"github.com/jkoskel/refino/pkg/api"
)

// callWithRetry invokes one external generator/checker call under the
// given retry policy, applying a per-attempt timeout when timeout > 0.
// A timed-out attempt counts as a transient failure as long as the run
// context itself is still live; run-level cancellation always wins.
func callWithRetry[T any](ctx context.Context, policy api.RetryPolicy, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		out, err := invoke(ctx, timeout, fn)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !retryable(ctx, policy, err) || attempt == maxAttempts {
			return zero, lastErr
		}

		if delay := policy.Delay(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

func invoke[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}

func retryable(ctx context.Context, policy api.RetryPolicy, err error) bool {
	if code, ok := api.CallCode(err); ok {
		return policy.Retryable(code)
	}
	// An attempt timeout is transient; run cancellation is not.
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return true
	}
	return false
}
