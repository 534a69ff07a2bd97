package assistant

import (
	"context"
	"errors"
	"time"
)

// Policy bounds the attempts of a round trip to the model.
type Policy struct {
	Attempts int           // at least one attempt is always made
	Timeout  time.Duration // per attempt, no limit when zero
}

// DefaultPolicy is three attempts of twenty seconds each.
var DefaultPolicy = Policy{Attempts: 3, Timeout: 20 * time.Second}

// Retry calls fn until it succeeds, the attempts of p are exhausted, or ctx
// is done. Each call gets its own context limited to p.Timeout and its
// attempt number, starting at 1. The error of the last attempt is returned.
func Retry[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	attempts := max(p.Attempts, 1)
	var zero T
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			if err != nil {
				return zero, errors.Join(err, cerr)
			}
			return zero, cerr
		}
		var v T
		v, err = once(ctx, p.Timeout, attempt, fn)
		if err == nil {
			return v, nil
		}
	}
	return zero, err
}

func once[T any](ctx context.Context, timeout time.Duration, attempt int, fn func(context.Context, int) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx, attempt)
}
