// Package retry provides a bounded retry-with-backoff executor shared by the
// remote phases of the ingestion pipeline. Each wrapped phase retries only
// itself; callers compose one executor per phase.
package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const DefaultMaxAttempts = 3

type Option func(e *Executor)

// Executor runs an operation up to maxAttempts times, sleeping an exponential
// backoff delay between attempts. Errors rejected by the retryable predicate
// propagate immediately without consuming a retry.
type Executor struct {
	maxAttempts int
	retryable   func(error) bool
	sleep       func(ctx context.Context, d time.Duration) error
	name        string
}

func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		maxAttempts: DefaultMaxAttempts,
		retryable:   func(error) bool { return true },
		sleep:       sleepContext,
		name:        "retry",
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func WithMaxAttempts(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithRetryable sets the predicate consulted on failure. A false verdict
// aborts the executor with the error untouched.
func WithRetryable(fn func(error) bool) Option {
	return func(e *Executor) {
		e.retryable = fn
	}
}

// WithName names the executor in retry log lines.
func WithName(name string) Option {
	return func(e *Executor) {
		e.name = name
	}
}

// WithSleep replaces the backoff sleep between attempts. Tests use it to
// avoid real delays.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		e.sleep = fn
	}
}

// Do runs op until it succeeds, fails non-retryably, or the attempt budget is
// exhausted. The last error is returned, never swallowed.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !e.retryable(lastErr) {
			return lastErr
		}

		if attempt == e.maxAttempts-1 {
			break
		}

		wait := Backoff(attempt)
		zap.S().Named(e.name).Warnw("operation failed, retrying",
			"attempt", attempt+1,
			"max_attempts", e.maxAttempts,
			"wait", wait,
			"error", lastErr)

		if err := e.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return lastErr
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}

// Backoff returns the delay before the attempt following the given 0-based
// failed attempt: 2^attempt + 1 seconds.
func Backoff(attempt int) time.Duration {
	return (1<<uint(attempt) + 1) * time.Second
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
