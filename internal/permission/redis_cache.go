package permission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps one hash per actor so an invalidation is a single DEL.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "perm"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(actorID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, actorID)
}

func field(r Resource, a Action) string {
	return r.String() + ":" + a.String()
}

func (c *RedisCache) Get(ctx context.Context, actorID string, r Resource, a Action) (bool, bool, error) {
	v, err := c.client.HGet(ctx, c.key(actorID), field(r, a)).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("redis hget: %w", err)
	}
	return v == "1", true, nil
}

func (c *RedisCache) Set(ctx context.Context, actorID string, r Resource, a Action, allowed bool) error {
	v := "0"
	if allowed {
		v = "1"
	}

	key := c.key(actorID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, field(r, a), v)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, actorID string) error {
	if err := c.client.Del(ctx, c.key(actorID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
