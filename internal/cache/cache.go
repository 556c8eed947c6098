// Package cache stores query results keyed by board and query parameters.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gravitas-games/hexboard/internal/pathfind"
	"github.com/gravitas-games/hexboard/internal/propagate"
	"github.com/gravitas-games/hexboard/pkg/hex"
)

// Cache is a best-effort result store. A miss is reported as found=false
// with a nil error.
type Cache interface {
	Get(ctx context.Context, key string, v interface{}) (found bool, err error)
	Set(ctx context.Context, key string, v interface{}) error
}

// RedisCache keeps JSON-encoded results in Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps client. Keys are prefixed with prefix and expire after ttl.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, interface{}) error         { return nil }

func cellKey(id hex.CellID) string {
	return fmt.Sprintf("%d.%d.%d", id.Elevation, id.Row, id.Col)
}

// PathKey names the result of a path search on a board.
func PathKey(boardID string, algo pathfind.Algorithm, start, goal hex.CellID) string {
	return fmt.Sprintf("%s:path:%s:%s:%s", boardID, algo, cellKey(start), cellKey(goal))
}

// PropagationKey names the result of a propagation on a board. Linear
// directions are normalised so equivalent patterns share a key.
func PropagationKey(boardID string, origin hex.CellID, p propagate.Pattern) string {
	return fmt.Sprintf("%s:prop:%s:%s", boardID, cellKey(origin), p)
}
