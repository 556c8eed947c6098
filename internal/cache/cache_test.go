package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/hexboard/internal/cache"
	"github.com/gravitas-games/hexboard/internal/pathfind"
	"github.com/gravitas-games/hexboard/internal/propagate"
	"github.com/gravitas-games/hexboard/pkg/hex"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "b1:path:astar:1.0.0:1.4.-2",
		cache.PathKey("b1", pathfind.AStar, hex.ID(1, 0, 0), hex.ID(1, 4, -2)))
	assert.NotEqual(t,
		cache.PathKey("b1", pathfind.AStar, hex.ID(1, 0, 0), hex.ID(1, 4, 2)),
		cache.PathKey("b1", pathfind.BFS, hex.ID(1, 0, 0), hex.ID(1, 4, 2)))

	a := cache.PropagationKey("b1", hex.ID(1, 2, 2), propagate.Linear{Direction: 1, Spread: 1, Reach: 2})
	b := cache.PropagationKey("b1", hex.ID(1, 2, 2), propagate.Linear{Direction: 7, Spread: 1, Reach: 2})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, cache.PropagationKey("b1", hex.ID(1, 2, 2), propagate.Circular{Spread: 1}))
	assert.NotEqual(t, a, cache.PropagationKey("b2", hex.ID(1, 2, 2), propagate.Linear{Direction: 1, Spread: 1, Reach: 2}))
}

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	require.NoError(t, c.Set(context.Background(), "k", 1))
	var v int
	found, err := c.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := cache.NewRedis(client, "test:", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, c.Set(ctx, "k", []int{1, 2}))
	var v []int
	found, err := c.Get(ctx, "k", &v)
	assert.Error(t, err)
	assert.False(t, found)
}
