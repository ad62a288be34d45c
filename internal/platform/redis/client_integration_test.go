//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartoes/internal/platform/config"
	"cartoes/internal/platform/redis"
	"cartoes/pkg/testutil/containers"
)

func TestNewConnectsAndReportsHealth(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	client, err := redis.New(ctx, config.RedisConfig{
		URL:         rc.URL,
		PoolSize:    4,
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
	})
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.Equal(t, "redis", client.Name())
	assert.NoError(t, client.Health(ctx))

	require.NoError(t, client.Close())
	assert.Error(t, client.Health(ctx))
}
