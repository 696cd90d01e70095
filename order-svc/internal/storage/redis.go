package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"qrmenu/order-svc/internal/service"
)

// pendingClaim marks a key whose order is still being created.
const pendingClaim = "pending"

type RedisIdempotency struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisIdempotency(client *redis.Client, ttl time.Duration) *RedisIdempotency {
	return &RedisIdempotency{Client: client, TTL: ttl}
}

func (c *RedisIdempotency) Key(token, key string) string {
	return "order:idem:" + token + ":" + key
}

// Claim reserves key for the caller. When someone else holds it, orderID is
// the order they recorded, or empty while theirs is still in flight.
func (c *RedisIdempotency) Claim(ctx context.Context, token, key string) (string, bool, error) {
	redisKey := c.Key(token, key)
	claimed, err := c.Client.SetNX(ctx, redisKey, pendingClaim, c.TTL).Result()
	if err != nil {
		return "", false, err
	}
	if claimed {
		return "", true, nil
	}

	orderID, err := c.Client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) || orderID == pendingClaim {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return orderID, false, nil
}

// Remember replaces the caller's claim with the order it created.
func (c *RedisIdempotency) Remember(ctx context.Context, token, key, orderID string) error {
	return c.Client.Set(ctx, c.Key(token, key), orderID, c.TTL).Err()
}

// Release drops a claim that never produced an order, so a retry can take it.
func (c *RedisIdempotency) Release(ctx context.Context, token, key string) error {
	return c.Client.Del(ctx, c.Key(token, key)).Err()
}

var _ service.IdempotencyStore = (*RedisIdempotency)(nil)
