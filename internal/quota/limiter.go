package quota

import (
	"context"
	"sync"
	"time"

	"beacon/internal/constants"
)

// Limiter caps per-tenant alert volume over a fixed window.
type Limiter interface {
	// Allow reports whether the tenant has quota left. It does not consume.
	Allow(ctx context.Context, tenantID string) (bool, error)
	// Consume counts one accepted alert against the tenant's window. Call
	// it once per routed alert, after Allow returned true.
	Consume(ctx context.Context, tenantID string) error
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter holds one fixed (not sliding) window per tenant, created
// lazily on first use and replaced in place once expired. Entries are never
// explicitly destroyed; growth is bounded by the number of distinct tenants.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = constants.DefaultQuotaPerTenant
	}
	if period <= 0 {
		period = constants.DefaultQuotaWindow
	}
	return &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, tenantID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.currentWindowLocked(tenantID)
	return w.count < l.limit, nil
}

func (l *MemoryLimiter) Consume(_ context.Context, tenantID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentWindowLocked(tenantID).count++
	return nil
}

func (l *MemoryLimiter) currentWindowLocked(tenantID string) *window {
	now := l.now()
	w, ok := l.windows[tenantID]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[tenantID] = w
	}
	return w
}

// SetNowFunc overrides the clock. Tests only.
func (l *MemoryLimiter) SetNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
