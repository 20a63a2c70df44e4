package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retried operation. Every error is treated as retryable;
// the executor makes no distinction between error classes.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Interval:    1 * time.Second,
	}
}

// Retry runs fn up to policy.MaxAttempts times with linear backoff between
// attempts. The error of the last attempt is returned after exhaustion.
func Retry(ctx context.Context, policy Policy, fn func() error) error {
	return RetryWithCallback(ctx, policy, fn, nil)
}

// RetryWithCallback is Retry with an onRetry hook invoked before each wait,
// carrying the attempt number (1-based), the error, and the upcoming delay.
func RetryWithCallback(ctx context.Context, policy Policy, fn func() error, onRetry func(attempt int, err error, nextDelay time.Duration)) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.Interval <= 0 {
		policy.Interval = 1 * time.Second
	}

	var b backoff.BackOff = NewLinearBackoff(policy.Interval)
	b = backoff.WithContext(b, ctx)
	b = backoff.WithMaxRetries(b, uint64(policy.MaxAttempts-1))

	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}

		if onRetry != nil && attempt < policy.MaxAttempts {
			onRetry(attempt, err, CalculateBackoffDuration(attempt, policy.Interval))
		}

		return err
	}

	return backoff.Retry(operation, b)
}
