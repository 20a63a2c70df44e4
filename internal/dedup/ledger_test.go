package dedup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerFirstSeenIsNotDuplicate(t *testing.T) {
	l := NewMemoryLedger(5*time.Minute, 1000)

	dup, err := l.IsDuplicate(context.Background(), "T1CRITICALDB down")
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestMemoryLedgerSuppressesWithinWindow(t *testing.T) {
	l := NewMemoryLedger(5*time.Minute, 1000)
	ctx := context.Background()

	require.NoError(t, l.MarkSent(ctx, "key"))

	dup, err := l.IsDuplicate(ctx, "key")
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestMemoryLedgerExpiresAfterWindow(t *testing.T) {
	l := NewMemoryLedger(5*time.Minute, 1000)
	ctx := context.Background()

	now := time.Now()
	l.SetNowFunc(func() time.Time { return now })
	require.NoError(t, l.MarkSent(ctx, "key"))

	now = now.Add(5*time.Minute - time.Second)
	dup, err := l.IsDuplicate(ctx, "key")
	require.NoError(t, err)
	assert.True(t, dup, "inside the window")

	now = now.Add(2 * time.Second)
	dup, err = l.IsDuplicate(ctx, "key")
	require.NoError(t, err)
	assert.False(t, dup, "past the window")
}

func TestMemoryLedgerMarkSentRefreshesWindow(t *testing.T) {
	l := NewMemoryLedger(5*time.Minute, 1000)
	ctx := context.Background()

	now := time.Now()
	l.SetNowFunc(func() time.Time { return now })
	require.NoError(t, l.MarkSent(ctx, "key"))

	now = now.Add(4 * time.Minute)
	require.NoError(t, l.MarkSent(ctx, "key"))

	now = now.Add(4 * time.Minute)
	dup, err := l.IsDuplicate(ctx, "key")
	require.NoError(t, err)
	assert.True(t, dup, "window counts from the latest mark")
}

func TestMemoryLedgerSweepsAboveThreshold(t *testing.T) {
	l := NewMemoryLedger(5*time.Minute, 10)
	ctx := context.Background()

	now := time.Now()
	l.SetNowFunc(func() time.Time { return now })

	for i := 0; i < 10; i++ {
		require.NoError(t, l.MarkSent(ctx, fmt.Sprintf("old-%d", i)))
	}

	// stale entries get evicted by the insert that crosses the threshold
	now = now.Add(10 * time.Minute)
	require.NoError(t, l.MarkSent(ctx, "fresh"))

	assert.Equal(t, 1, l.Len())

	dup, err := l.IsDuplicate(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestMemoryLedgerSweepKeepsLiveEntries(t *testing.T) {
	l := NewMemoryLedger(5*time.Minute, 5)
	ctx := context.Background()

	now := time.Now()
	l.SetNowFunc(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		require.NoError(t, l.MarkSent(ctx, fmt.Sprintf("stale-%d", i)))
	}

	now = now.Add(10 * time.Minute)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.MarkSent(ctx, fmt.Sprintf("live-%d", i)))
	}

	assert.Equal(t, 3, l.Len())
}
