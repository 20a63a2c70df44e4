package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"beacon/internal/constants"
)

// RedisLedger shares the suppression window across instances. Like the
// in-memory variant, the duplicate check reads without writing; only
// MarkSent claims the key, so an alert dropped after the check leaves no
// trace in the ledger.
type RedisLedger struct {
	client *redis.Client
	window time.Duration
}

func NewRedisLedger(client *redis.Client, window time.Duration) *RedisLedger {
	if window <= 0 {
		window = constants.DefaultDedupWindow
	}
	return &RedisLedger{client: client, window: window}
}

func (l *RedisLedger) IsDuplicate(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, constants.CacheKeyPrefixDedup+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis Exists failed: %w", err)
	}
	return n > 0, nil
}

func (l *RedisLedger) MarkSent(ctx context.Context, key string) error {
	if err := l.client.Set(ctx, constants.CacheKeyPrefixDedup+key, time.Now().Unix(), l.window).Err(); err != nil {
		return fmt.Errorf("redis Set failed: %w", err)
	}
	return nil
}

var _ Ledger = (*RedisLedger)(nil)
var _ Ledger = (*MemoryLedger)(nil)
