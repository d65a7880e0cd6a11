// Package displaycache caches rendered public-showcase lists in Redis so
// profile reads do not hit PostgreSQL on every request. The store stays the
// source of truth; entries expire on a short TTL and are rewritten after
// every showcase-affecting mutation.
package displaycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/melly/timerocket/internal/server/models"
)

// ErrCacheMiss is returned by Get when no entry exists for the user.
var ErrCacheMiss = errors.New("display cache miss")

// Cache is the showcase cache contract consumed by the display service.
type Cache interface {
	Get(ctx context.Context, userID int64) ([]models.PublicChest, error)
	Set(ctx context.Context, userID int64, chests []models.PublicChest) error
	Invalidate(ctx context.Context, userID int64) error
	Close() error
}

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Open connects to Redis and verifies the connection with a ping.
func Open(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping failed %q: %w", addr, err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func key(userID int64) string {
	return fmt.Sprintf("display:publicChests:%d", userID)
}

func (c *RedisCache) Get(ctx context.Context, userID int64) ([]models.PublicChest, error) {
	data, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var chests []models.PublicChest
	if err := json.Unmarshal(data, &chests); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}

	return chests, nil
}

func (c *RedisCache) Set(ctx context.Context, userID int64, chests []models.PublicChest) error {
	data, err := json.Marshal(chests)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	if err := c.client.Set(ctx, key(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
