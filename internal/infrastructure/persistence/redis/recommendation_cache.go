// Package redis implements Redis-backed caching and rate limiting for EduPath.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/edupath/edupath-core/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION CACHE
// ══════════════════════════════════════════════════════════════════════════════

// RecommendationCache implements query.RecommendationCache on top of Cache.
// Entries are JSON lists keyed per user with a short TTL; a progress report
// or attempt completion invalidates the user's entry.
type RecommendationCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewRecommendationCache creates a new RecommendationCache.
// A non-positive ttl falls back to TTLRecommendation.
func NewRecommendationCache(cache *Cache, ttl time.Duration) *RecommendationCache {
	if ttl <= 0 {
		ttl = TTLRecommendation
	}
	return &RecommendationCache{cache: cache, ttl: ttl}
}

func recommendationKey(userID string) string {
	return PrefixRecommendation + userID
}

// Get returns the cached list and whether it was present.
func (c *RecommendationCache) Get(ctx context.Context, userID string) ([]query.RecommendedCourse, bool, error) {
	var items []query.RecommendedCourse

	err := c.cache.Get(ctx, recommendationKey(userID), &items)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return items, true, nil
}

// Set stores the list for the user.
func (c *RecommendationCache) Set(ctx context.Context, userID string, items []query.RecommendedCourse) error {
	return c.cache.Set(ctx, recommendationKey(userID), items, c.ttl)
}

// Invalidate drops the user's cached list.
func (c *RecommendationCache) Invalidate(ctx context.Context, userID string) error {
	return c.cache.Delete(ctx, recommendationKey(userID))
}
