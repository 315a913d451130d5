package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"label-compliance/internal/common/config"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr(), CacheTTL: 60000})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisClient_SetGet(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	_, found, err := client.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.Set(ctx, "k", []byte(`{"answer":"x"}`)))
	value, found, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"answer":"x"}`, string(value))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	_, found, err = client.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisClient_ServerDown(t *testing.T) {
	client, mr := newTestRedis(t)
	mr.Close()

	_, _, err := client.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, client.Set(context.Background(), "k", []byte("v")))
}
