// Package retry runs store operations under a bounded backoff policy.
//
// Only store adapters retry; the resolvers and the HTTP layer never do.
package retry

import (
	"context"
	"fmt"
	"time"
)

type Action int

const (
	Stop     Action = iota // permanent error, abort immediately
	Retry                  // transient error, use normal backoff
	Throttle               // store asked us to slow down, use longer backoff
)

type Policy struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	ThrottleBackoff time.Duration
	MaxBackoff      time.Duration
	OnRetry         func(attempt int, err error, backoff time.Duration)
}

// DefaultStorePolicy keeps the total retry time well below a typical request deadline.
var DefaultStorePolicy = Policy{
	MaxAttempts:     3,
	InitialBackoff:  20 * time.Millisecond,
	ThrottleBackoff: 100 * time.Millisecond,
	MaxBackoff:      250 * time.Millisecond,
}

type Classify func(err error) Action
type Operation[T any] func(ctx context.Context) (T, error)

func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		return zero, fmt.Errorf("retry policy needs MaxAttempts >= 1, got %d", p.MaxAttempts)
	}

	backoff := p.InitialBackoff
	for attempt := 1; ; attempt++ {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}

		action := classify(err)
		if action == Stop {
			return zero, &PermanentError{Err: err}
		}
		if attempt == p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		wait := backoff
		if action == Throttle && p.ThrottleBackoff > wait {
			wait = p.ThrottleBackoff
		}
		if p.MaxBackoff > 0 && wait > p.MaxBackoff {
			wait = p.MaxBackoff
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			backoff *= 2
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("context cancelled during retry: %w (last error: %w)", ctx.Err(), err)
		}
	}
}

type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
