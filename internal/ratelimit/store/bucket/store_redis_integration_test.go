//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartoes/internal/ratelimit/store/bucket"
	"cartoes/pkg/testutil/containers"
)

func TestRedisBucketStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	store := bucket.NewRedis(rc.Client, 3, time.Minute, bucket.WithRedisClock(func() time.Time { return now }))

	t.Run("admits up to the limit within a window", func(t *testing.T) {
		for i := range 3 {
			result, err := store.Allow(ctx, "ip:203.0.113.7")
			require.NoError(t, err)
			assert.True(t, result.Allowed)
			assert.Equal(t, 2-i, result.Remaining)
		}

		result, err := store.Allow(ctx, "ip:203.0.113.7")
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 60, result.RetryAfter)
		assert.Equal(t, now.Add(time.Minute), result.ResetAt)
	})

	t.Run("next window starts fresh", func(t *testing.T) {
		now = now.Add(time.Minute)
		result, err := store.Allow(ctx, "ip:203.0.113.7")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("keys expire", func(t *testing.T) {
		keys, err := rc.Client.Keys(ctx, "cartoes:ratelimit:*").Result()
		require.NoError(t, err)
		require.NotEmpty(t, keys)
		ttl, err := rc.Client.TTL(ctx, keys[0]).Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})

	t.Run("canceled context surfaces the error", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Allow(cctx, "ip:198.51.100.1")
		assert.Error(t, err)
	})
}
