// Package cache holds the Redis-backed read-through cache for admin analytics.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/safety-suggestions/internal/domain"
)

const (
	// AnalyticsKey is the Redis key holding the JSON-encoded analytics snapshot.
	AnalyticsKey = "analytics:suggestions"
	// GenerationKey counts invalidations of AnalyticsKey.
	GenerationKey = "analytics:suggestions:generation"
)

// ErrGenerationChanged is returned by Set when an invalidation happened after the
// generation was read. The snapshot is discarded.
var ErrGenerationChanged = errors.New("analytics cache invalidated during refresh")

// AnalyticsCache stores computed analytics between status changes.
//
// Readers call Generation before computing a snapshot and pass it to Set, so a
// snapshot computed before a concurrent Invalidate is never stored.
type AnalyticsCache interface {
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context) (*domain.SuggestionAnalytics, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, generation int64, analytics *domain.SuggestionAnalytics) error
	Invalidate(ctx context.Context) error
}

// setIfGeneration stores ARGV[2] under KEYS[1] with a PX ttl of ARGV[3] only while
// KEYS[2] still equals ARGV[1].
const setIfGeneration = `
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

type redisAnalyticsCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisAnalyticsCache builds a cache over client. A nil client or a non-positive
// ttl yields a cache that never stores anything.
func NewRedisAnalyticsCache(client redis.Cmdable, ttl time.Duration) AnalyticsCache {
	if client == nil || ttl <= 0 {
		return NoopAnalyticsCache{}
	}
	return &redisAnalyticsCache{client: client, ttl: ttl}
}

func (c *redisAnalyticsCache) Get(ctx context.Context) (*domain.SuggestionAnalytics, error) {
	raw, err := c.client.Get(ctx, AnalyticsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get analytics cache: %w", err)
	}

	var analytics domain.SuggestionAnalytics
	if err := json.Unmarshal(raw, &analytics); err != nil {
		return nil, fmt.Errorf("decode analytics cache: %w", err)
	}
	return &analytics, nil
}

func (c *redisAnalyticsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get analytics cache generation: %w", err)
	}
	return gen, nil
}

func (c *redisAnalyticsCache) Set(ctx context.Context, generation int64, analytics *domain.SuggestionAnalytics) error {
	raw, err := json.Marshal(analytics)
	if err != nil {
		return fmt.Errorf("encode analytics cache: %w", err)
	}
	stored, err := c.client.Eval(ctx, setIfGeneration,
		[]string{AnalyticsKey, GenerationKey},
		generation, raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("set analytics cache: %w", err)
	}
	if stored == 0 {
		return ErrGenerationChanged
	}
	return nil
}

func (c *redisAnalyticsCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, GenerationKey)
		pipe.Del(ctx, AnalyticsKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate analytics cache: %w", err)
	}
	return nil
}

// NoopAnalyticsCache always misses.
type NoopAnalyticsCache struct{}

func (NoopAnalyticsCache) Get(context.Context) (*domain.SuggestionAnalytics, error)      { return nil, nil }
func (NoopAnalyticsCache) Generation(context.Context) (int64, error)                     { return 0, nil }
func (NoopAnalyticsCache) Set(context.Context, int64, *domain.SuggestionAnalytics) error { return nil }
func (NoopAnalyticsCache) Invalidate(context.Context) error                              { return nil }
