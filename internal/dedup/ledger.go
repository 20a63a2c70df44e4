package dedup

import (
	"context"
	"sync"
	"time"

	"beacon/internal/constants"
	"beacon/pkg/metrics"
)

// Ledger suppresses repeat alerts with the same tenant+severity+title
// signature inside a time window.
type Ledger interface {
	// IsDuplicate reports whether key was marked sent within the window.
	IsDuplicate(ctx context.Context, key string) (bool, error)
	// MarkSent refreshes the window for key unconditionally.
	MarkSent(ctx context.Context, key string) error
}

// MemoryLedger is the process-local default. A single lock guards the map;
// the check-then-act gap between IsDuplicate and MarkSent remains, so two
// concurrent dispatches of the same key can still both pass the check.
type MemoryLedger struct {
	mu         sync.Mutex
	entries    map[string]time.Time
	window     time.Duration
	maxEntries int
	now        func() time.Time
}

func NewMemoryLedger(window time.Duration, maxEntries int) *MemoryLedger {
	if window <= 0 {
		window = constants.DefaultDedupWindow
	}
	if maxEntries <= 0 {
		maxEntries = constants.DefaultDedupMaxEntries
	}
	return &MemoryLedger{
		entries:    make(map[string]time.Time),
		window:     window,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (l *MemoryLedger) IsDuplicate(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sentAt, ok := l.entries[key]
	if !ok {
		return false, nil
	}
	return l.now().Sub(sentAt) < l.window, nil
}

func (l *MemoryLedger) MarkSent(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[key] = l.now()

	if len(l.entries) > l.maxEntries {
		l.sweepLocked()
	}

	metrics.DedupLedgerSize.Set(float64(len(l.entries)))
	return nil
}

// sweepLocked removes every entry older than the window. It is a blocking
// O(n) pass, acceptable because it only runs past the size threshold and
// the ledger is process-local.
func (l *MemoryLedger) sweepLocked() {
	cutoff := l.now().Add(-l.window)
	for key, sentAt := range l.entries {
		if sentAt.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Len reports the current entry count.
func (l *MemoryLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// SetNowFunc overrides the clock. Tests only.
func (l *MemoryLedger) SetNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
