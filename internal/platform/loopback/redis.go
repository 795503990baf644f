package loopback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "cardsync:loopback"

// claimScript decrements the pending count and deletes the key at zero.
// Returns 1 when a pending occurrence existed.
var claimScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
	return 0
end
if tonumber(v) <= 1 then
	redis.call("DEL", KEYS[1])
else
	redis.call("DECR", KEYS[1])
end
return 1
`)

// RedisCache keeps fingerprints in Redis under a per-instance namespace, so
// pending echoes survive a process restart. Expiry is native key TTL.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, instanceID string, ttl time.Duration) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if instanceID == "" {
		return nil, errors.New("instance id is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		prefix: fmt.Sprintf("%s:%s:", redisKeyPrefix, instanceID),
		ttl:    ttl,
	}, nil
}

func (c *RedisCache) Remember(ctx context.Context, fingerprint string) error {
	key := c.key(fingerprint)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.PExpire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remember fingerprint: %w", err)
	}
	return nil
}

func (c *RedisCache) Claim(ctx context.Context, fingerprint string) (bool, error) {
	n, err := claimScript.Run(ctx, c.client, []string{c.key(fingerprint)}).Int64()
	if err != nil {
		return false, fmt.Errorf("claim fingerprint: %w", err)
	}
	return n == 1, nil
}

func (c *RedisCache) Forget(ctx context.Context, fingerprint string) error {
	_, err := c.Claim(ctx, fingerprint)
	return err
}

func (c *RedisCache) Contains(ctx context.Context, fingerprint string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(fingerprint)).Result()
	if err != nil {
		return false, fmt.Errorf("check fingerprint: %w", err)
	}
	return n > 0, nil
}

func (c *RedisCache) key(fingerprint string) string {
	return c.prefix + fingerprint
}
