package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisConfig(t *testing.T) config.RedisConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	p, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return config.RedisConfig{Host: host, Port: p}
}

func TestRedisCache_Integration(t *testing.T) {
	cfg := newRedisConfig(t)
	ctx := context.Background()

	results, err := NewRedisCache(cfg, "test:analytics:")
	require.NoError(t, err)
	defer results.Close()

	events, err := NewRedisCache(cfg, "test:events:")
	require.NoError(t, err)
	defer events.Close()

	require.NoError(t, results.Set(ctx, "overview", []byte("a"), time.Minute))
	require.NoError(t, results.Set(ctx, "revenue", []byte("b"), time.Minute))

	got, ok, err := results.Get(ctx, "overview")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", string(got))

	stored, err := events.SetIfAbsent(ctx, "evt-1", []byte("1"), time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)
	stored, err = events.SetIfAbsent(ctx, "evt-1", []byte("1"), time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)

	require.NoError(t, results.Clear(ctx))

	_, ok, err = results.Get(ctx, "revenue")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := events.Exists(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, exists, "clearing results leaves other prefixes alone")
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(config.RedisConfig{Host: "127.0.0.1", Port: 1}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
