package internal

import (
	"context"
	"time"
)

// Backoff describes how an operation is retried: up to Attempts calls,
// waiting Initial, then twice as long after each failure.
type Backoff struct {
	Attempts int
	Initial  time.Duration
}

var DefaultBackoff = Backoff{Attempts: 3, Initial: 100 * time.Millisecond}

func (b Backoff) delay(attempt int) time.Duration {
	return b.Initial * time.Duration(1<<attempt)
}

// RetryResult calls fn until it succeeds or the attempts are exhausted, in which case the
// last error is returned. It returns ctx.Err() if ctx ends while waiting between attempts.
// fn receives the attempt number, starting at 1.
func RetryResult[T any](ctx context.Context, b Backoff, fn func(attempt int) (T, error)) (T, error) {
	var result T
	var err error
	for i := 0; i < max(b.Attempts, 1); i++ {
		if result, err = fn(i + 1); err == nil {
			return result, nil
		}
		if i < b.Attempts-1 {
			select {
			case <-time.After(b.delay(i)):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}
	return result, err
}

// Retry is like RetryResult for functions without a result.
func Retry(ctx context.Context, b Backoff, fn func(attempt int) error) error {
	_, err := RetryResult(ctx, b, func(attempt int) (struct{}, error) {
		return struct{}{}, fn(attempt)
	})
	return err
}
