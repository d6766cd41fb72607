// Package retry is the single retry policy shared by every backend call.
// One policy object parameterizes max attempts, base delay, and the error
// classifier; call sites never hand-roll their own backoff loops.
package retry

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy describes one retry discipline. Retryable decides per error
// whether another attempt is allowed; everything else aborts immediately.
type Policy struct {
	MaxAttempts uint
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool
}

// Default is the backend-call policy: 3 attempts total, exponential backoff
// starting at 1s, doubling, capped at 5s, no jitter.
func Default(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   1000 * time.Millisecond,
		MaxDelay:    5000 * time.Millisecond,
		Retryable:   retryable,
	}
}

// Do runs op under the policy. Context cancellation aborts between attempts
// and is threaded into op for in-flight aborts; a cancelled run returns the
// context error untouched so callers can tell it apart from backend failure.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	wrapped := func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return v, backoff.Permanent(ctx.Err())
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return v, backoff.Permanent(err)
		}
		log.Printf("Attempt %d/%d failed, will retry: %v", attempt, p.MaxAttempts, err)
		return v, err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.BaseDelay
	eb.Multiplier = 2
	eb.MaxInterval = p.MaxDelay
	eb.RandomizationFactor = 0

	return backoff.Retry(ctx, wrapped,
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(p.MaxAttempts),
	)
}
