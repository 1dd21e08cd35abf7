// Package redis implements Redis-backed caching and rate limiting for EduPath.
package redis

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSISTANCE QUERY LIMITER
// ══════════════════════════════════════════════════════════════════════════════

// QueryLimiter implements assistance.QueryLimiter with a fixed window: an
// INCR per query and an EXPIRE set on the first increment of the window.
// Over-quota increments are rolled back so a denied query consumes no slot.
type QueryLimiter struct {
	cache  *Cache
	quota  int
	window time.Duration
}

// NewQueryLimiter creates a new QueryLimiter allowing quota queries per
// window. A non-positive window falls back to TTLAssistanceQuota.
func NewQueryLimiter(cache *Cache, quota int, window time.Duration) *QueryLimiter {
	if window <= 0 {
		window = TTLAssistanceQuota
	}
	return &QueryLimiter{
		cache:  cache,
		quota:  quota,
		window: window,
	}
}

func quotaKey(userID string) string {
	return PrefixAssistanceQuota + userID
}

// Allow reports whether the user may make another query right now and, when
// allowed, consumes one slot.
func (l *QueryLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	key := quotaKey(userID)
	client := l.cache.Client()

	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}

	if count > int64(l.quota) {
		// Give the slot back so the counter reflects admitted queries only.
		if err := client.Decr(ctx, key).Err(); err != nil {
			return false, err
		}
		return false, nil
	}

	return true, nil
}
