package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"qrmenu/menu-svc/internal/domain"
)

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) MenuKey(token string) string {
	return "menu:" + token
}

// OwnerKey is a set of the owner's cached tokens, used for invalidation.
func (c *RedisCache) OwnerKey(ownerID string) string {
	return "menu:owner:" + ownerID
}

func (c *RedisCache) GetMenu(ctx context.Context, token string) (*domain.PublicMenu, bool, error) {
	raw, err := c.Client.Get(ctx, c.MenuKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var menu domain.PublicMenu
	if err := json.Unmarshal(raw, &menu); err != nil {
		return nil, false, err
	}
	return &menu, true, nil
}

func (c *RedisCache) SetMenu(ctx context.Context, ownerID, token string, menu *domain.PublicMenu) error {
	payload, err := json.Marshal(menu)
	if err != nil {
		return err
	}

	pipe := c.Client.TxPipeline()
	pipe.Set(ctx, c.MenuKey(token), payload, c.TTL)
	pipe.SAdd(ctx, c.OwnerKey(ownerID), token)
	pipe.Expire(ctx, c.OwnerKey(ownerID), c.TTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisCache) InvalidateOwner(ctx context.Context, ownerID string) error {
	tokens, err := c.Client.SMembers(ctx, c.OwnerKey(ownerID)).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, c.MenuKey(t))
	}
	keys = append(keys, c.OwnerKey(ownerID))
	return c.Client.Del(ctx, keys...).Err()
}

func (c *RedisCache) InvalidateToken(ctx context.Context, ownerID, token string) error {
	pipe := c.Client.TxPipeline()
	pipe.Del(ctx, c.MenuKey(token))
	pipe.SRem(ctx, c.OwnerKey(ownerID), token)
	_, err := pipe.Exec(ctx)
	return err
}
