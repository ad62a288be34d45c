package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"cartoes/internal/ratelimit/models"
)

const redisKeyPrefix = "cartoes:ratelimit:"

// RedisBucketStore is a fixed-window counter shared by every instance that
// points at the same Redis.
type RedisBucketStore struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

type RedisOption func(*RedisBucketStore)

func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisBucketStore) { s.now = now }
}

func NewRedis(client *redis.Client, limit int, window time.Duration, opts ...RedisOption) *RedisBucketStore {
	s := &RedisBucketStore{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WindowFor derives the fixed window that admits burst requests at rps on
// average.
func WindowFor(rps float64, burst int) time.Duration {
	if rps <= 0 || burst <= 0 {
		return time.Second
	}
	return max(time.Duration(float64(burst)/rps*float64(time.Second)), time.Second)
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string) (*models.RateLimitResult, error) {
	now := s.now()
	windowStart := now.Truncate(s.window)
	resetAt := windowStart.Add(s.window)
	redisKey := redisKeyPrefix + key + ":" + strconv.FormatInt(windowStart.Unix(), 10)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, s.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis rate limit check: %w", err)
	}

	count := int(incr.Val())
	result := &models.RateLimitResult{
		Allowed:   count <= s.limit,
		Limit:     s.limit,
		Remaining: max(s.limit-count, 0),
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = max(int(resetAt.Sub(now).Round(time.Second).Seconds()), 1)
	}
	return result, nil
}
