package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"

	"github.com/planweek/planweek-backend/pkg/logger"
)

// BurnoutSourceInterface is the read side the week view depends on
type BurnoutSourceInterface interface {
	BurnoutScores(ctx context.Context, userID string, weekStart string) ([]BurnoutScore, error)
}

// BurnoutCacheInterface caches per-user week scores so rapid week navigation
// does not hammer the stored procedure
type BurnoutCacheInterface interface {
	Get(ctx context.Context, key string) ([]BurnoutScore, error)
	Add(ctx context.Context, key string, scores []BurnoutScore) error
	Invalidate(ctx context.Context, key string) error
}

const burnoutCacheTTL = 10 * time.Minute

// BurnoutCacheKey builds the cache key for a user's week
func BurnoutCacheKey(userID string, weekStart string) string {
	return fmt.Sprintf("burnout:%s:%s", userID, weekStart)
}

// CachedBurnoutSource reads scores through a cache and falls back to the
// repository. Mutations invalidate the affected week so the next read sees
// the store's fresh computation.
type CachedBurnoutSource struct {
	Repository TaskRepositoryInterface
	Cache      BurnoutCacheInterface
	Logger     logger.Interface
}

// BurnoutScores reads through the cache
func (s *CachedBurnoutSource) BurnoutScores(ctx context.Context, userID string, weekStart string) ([]BurnoutScore, error) {
	key := BurnoutCacheKey(userID, weekStart)

	if scores, err := s.Cache.Get(ctx, key); err == nil {
		return scores, nil
	}

	scores, err := s.Repository.BurnoutScores(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Add(ctx, key, scores); err != nil {
		s.Logger.Warning("could not cache burnout scores: " + err.Error())
	}

	return scores, nil
}

// Invalidate drops the cached scores for one user week
func (s *CachedBurnoutSource) Invalidate(ctx context.Context, userID string, weekStart string) {
	if err := s.Cache.Invalidate(ctx, BurnoutCacheKey(userID, weekStart)); err != nil {
		s.Logger.Warning("could not invalidate burnout cache: " + err.Error())
	}
}

// BurnoutCacheRedis is a BurnoutCacheInterface backed by redis
type BurnoutCacheRedis struct {
	cache *cache.Cache
}

// NewBurnoutCacheRedis initializes a new BurnoutCacheRedis
func NewBurnoutCacheRedis(redisClient *redis.Client) *BurnoutCacheRedis {
	return &BurnoutCacheRedis{
		cache: cache.New(&cache.Options{Redis: redisClient}),
	}
}

// Get retrieves cached scores
func (c *BurnoutCacheRedis) Get(ctx context.Context, key string) ([]BurnoutScore, error) {
	var scores []BurnoutScore
	if err := c.cache.Get(ctx, key, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// Add stores scores with the cache TTL
func (c *BurnoutCacheRedis) Add(ctx context.Context, key string, scores []BurnoutScore) error {
	return c.cache.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: scores,
		TTL:   burnoutCacheTTL,
	})
}

// Invalidate drops a cached entry
func (c *BurnoutCacheRedis) Invalidate(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

// BurnoutCacheMemory is an in-process BurnoutCacheInterface for
// single-instance deployments and tests, bounded so stale weeks fall out
type BurnoutCacheMemory struct {
	Cache *lru.Cache
}

// NewBurnoutCacheMemory initializes a new BurnoutCacheMemory
func NewBurnoutCacheMemory() (*BurnoutCacheMemory, error) {
	cache, err := lru.New(100)
	if err != nil {
		return nil, err
	}

	return &BurnoutCacheMemory{Cache: cache}, nil
}

// Get retrieves cached scores
func (c *BurnoutCacheMemory) Get(_ context.Context, key string) ([]BurnoutScore, error) {
	result, ok := c.Cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("could not find key %s in burnout cache", key)
	}

	scores, ok := result.([]BurnoutScore)
	if !ok {
		return nil, fmt.Errorf("cache entry was not a score list")
	}

	return scores, nil
}

// Add stores scores, evicting the least recently used week when full
func (c *BurnoutCacheMemory) Add(_ context.Context, key string, scores []BurnoutScore) error {
	_ = c.Cache.Add(key, scores)
	return nil
}

// Invalidate drops a cached entry
func (c *BurnoutCacheMemory) Invalidate(_ context.Context, key string) error {
	c.Cache.Remove(key)
	return nil
}
