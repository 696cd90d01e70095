package storage

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/analytics-svc/internal/service"
	"qrmenu/pkg/plan"
)

type RedisCache struct {
	Client  *redis.Client
	PlanTTL time.Duration
	TopTTL  time.Duration
}

func NewRedisCache(client *redis.Client, planTTL, topTTL time.Duration) *RedisCache {
	return &RedisCache{Client: client, PlanTTL: planTTL, TopTTL: topTTL}
}

func (c *RedisCache) PlanKey(ownerID string) string {
	return "plan:" + ownerID
}

// TopKey is a sorted set of product names scored by units sold.
func (c *RedisCache) TopKey(ownerID string) string {
	return "analytics:top:" + ownerID
}

// RevenueKey is a hash of product name to revenue next to TopKey.
func (c *RedisCache) RevenueKey(ownerID string) string {
	return "analytics:revenue:" + ownerID
}

func (c *RedisCache) GetPlan(ctx context.Context, ownerID string) (plan.Plan, bool, error) {
	raw, err := c.Client.Get(ctx, c.PlanKey(ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return plan.Parse(raw), true, nil
}

func (c *RedisCache) SetPlan(ctx context.Context, ownerID string, p plan.Plan) error {
	return c.Client.Set(ctx, c.PlanKey(ownerID), string(p), c.PlanTTL).Err()
}

func (c *RedisCache) GetTop(ctx context.Context, ownerID string, limit int) ([]domain.TopProduct, bool, error) {
	members, err := c.Client.ZRevRangeWithScores(ctx, c.TopKey(ownerID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Member.(string))
	}
	revenues, err := c.Client.HMGet(ctx, c.RevenueKey(ownerID), names...).Result()
	if err != nil {
		return nil, false, err
	}

	top := make([]domain.TopProduct, 0, len(members))
	for i, m := range members {
		p := domain.TopProduct{ProductName: names[i], Quantity: int(m.Score)}
		if s, ok := revenues[i].(string); ok {
			p.Revenue, _ = strconv.ParseFloat(s, 64)
		}
		top = append(top, p)
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Quantity != top[j].Quantity {
			return top[i].Quantity > top[j].Quantity
		}
		return top[i].ProductName < top[j].ProductName
	})
	return top, true, nil
}

func (c *RedisCache) SetTop(ctx context.Context, ownerID string, top []domain.TopProduct) error {
	members := make([]redis.Z, 0, len(top))
	revenues := make(map[string]interface{}, len(top))
	for _, p := range top {
		members = append(members, redis.Z{Score: float64(p.Quantity), Member: p.ProductName})
		revenues[p.ProductName] = p.Revenue
	}

	pipe := c.Client.TxPipeline()
	pipe.Del(ctx, c.TopKey(ownerID), c.RevenueKey(ownerID))
	pipe.ZAdd(ctx, c.TopKey(ownerID), members...)
	pipe.HSet(ctx, c.RevenueKey(ownerID), revenues)
	pipe.Expire(ctx, c.TopKey(ownerID), c.TopTTL)
	pipe.Expire(ctx, c.RevenueKey(ownerID), c.TopTTL)
	_, err := pipe.Exec(ctx)
	return err
}

var _ service.AnalyticsCache = (*RedisCache)(nil)
