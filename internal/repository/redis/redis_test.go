package redis

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/itsatony/roomwatch/internal/config"
	"github.com/itsatony/roomwatch/internal/errors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *CounterRepo) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewCounterRepository(client, "roomwatch")
}

func TestIncrementAndCounts(t *testing.T) {
	mr, repo := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Increment(ctx, "login"))
	require.NoError(t, repo.Increment(ctx, "login"))
	require.NoError(t, repo.Increment(ctx, "push_update"))

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"login": 2, "push_update": 1}, counts)
	assert.Equal(t, "2", mr.HGet("roomwatch:events", "login"))
}

func TestCountsSkipsGarbage(t *testing.T) {
	mr, repo := setupTestRedis(t)
	mr.HSet(repo.Key(), "login", "4", "broken", "x")

	counts, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"login": 4}, counts)
}

func TestCountsEmpty(t *testing.T) {
	_, repo := setupTestRedis(t)
	counts, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestUnavailableRedis(t *testing.T) {
	mr, repo := setupTestRedis(t)
	mr.Close()

	err := repo.Increment(context.Background(), "login")
	require.Error(t, err)
	apiErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeDatabase, apiErr.Type)
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "events", NewCounterRepository(nil, "").Key())
	assert.Equal(t, "rw:events", NewCounterRepository(nil, "rw").Key())
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	client := NewClient(config.RedisConfig{Host: mr.Host(), Port: port})
	defer client.Close()
	require.NoError(t, Ping(context.Background(), client))
}

