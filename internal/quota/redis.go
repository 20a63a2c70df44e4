package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"beacon/internal/constants"
)

// RedisLimiter shares the fixed window across instances using a counter key
// with the window period as its TTL. The key expiring is the reset.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	period time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, period time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = constants.DefaultQuotaPerTenant
	}
	if period <= 0 {
		period = constants.DefaultQuotaWindow
	}
	return &RedisLimiter{client: client, limit: limit, period: period}
}

func (l *RedisLimiter) Allow(ctx context.Context, tenantID string) (bool, error) {
	count, err := l.client.Get(ctx, constants.CacheKeyPrefixQuota+tenantID).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis Get failed: %w", err)
	}
	return count < l.limit, nil
}

func (l *RedisLimiter) Consume(ctx context.Context, tenantID string) error {
	key := constants.CacheKeyPrefixQuota + tenantID

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis Incr failed: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.period).Err(); err != nil {
			return fmt.Errorf("redis Expire failed: %w", err)
		}
	}
	return nil
}

var _ Limiter = (*RedisLimiter)(nil)
var _ Limiter = (*MemoryLimiter)(nil)
