package retry

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// LinearBackoff waits attempt x Interval between attempts: 1s after the
// first failure, 2s after the second, and so on. No jitter.
type LinearBackoff struct {
	Interval time.Duration
	attempt  int
}

func NewLinearBackoff(interval time.Duration) *LinearBackoff {
	return &LinearBackoff{Interval: interval}
}

func (b *LinearBackoff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.Interval
}

func (b *LinearBackoff) Reset() {
	b.attempt = 0
}

// CalculateBackoffDuration returns the wait applied after the given attempt
// number (1-based), for logging before the sleep happens.
func CalculateBackoffDuration(attempt int, interval time.Duration) time.Duration {
	return time.Duration(attempt) * interval
}

var _ backoff.BackOff = (*LinearBackoff)(nil)
