// Package trendcache provides Redis-backed caching for trend aggregations.
// Trends re-walk the whole history log on every request, so dashboards that
// poll them lean on this cache between document mutations.
package trendcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"northstar/api/internal/okr"
)

const defaultTTL = 5 * time.Minute

// Cache stores computed trend responses keyed by query shape. Every document
// mutation invalidates the whole prefix; trends are cheap enough to recompute
// that fine-grained invalidation is not worth the bookkeeping.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache creates a Redis-backed trend cache.
func NewCache(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewCacheWithClient(client), nil
}

// NewCacheWithClient creates a cache from an existing Redis client.
func NewCacheWithClient(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		prefix: "trend:",
		ttl:    defaultTTL,
	}
}

func (c *Cache) groupedKey() string {
	return c.prefix + "grouped"
}

func (c *Cache) individualKey(group, objectiveID string) string {
	return fmt.Sprintf("%sindividual:%s:%s", c.prefix, group, objectiveID)
}

// GetGrouped returns the cached grouped trend, if present.
func (c *Cache) GetGrouped(ctx context.Context) (map[string][]okr.TrendPoint, bool, error) {
	raw, err := c.client.Get(ctx, c.groupedKey()).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get grouped trend: %w", err)
	}

	var trend map[string][]okr.TrendPoint
	if err := json.Unmarshal([]byte(raw), &trend); err != nil {
		return nil, false, fmt.Errorf("unmarshal grouped trend: %w", err)
	}
	return trend, true, nil
}

// SetGrouped caches a grouped trend response.
func (c *Cache) SetGrouped(ctx context.Context, trend map[string][]okr.TrendPoint) error {
	raw, err := json.Marshal(trend)
	if err != nil {
		return fmt.Errorf("marshal grouped trend: %w", err)
	}
	if err := c.client.Set(ctx, c.groupedKey(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set grouped trend: %w", err)
	}
	return nil
}

// GetIndividual returns the cached per-objective series for a filter, if
// present. Empty group or objectiveID means "all".
func (c *Cache) GetIndividual(ctx context.Context, group, objectiveID string) ([]okr.ObjectiveSeries, bool, error) {
	raw, err := c.client.Get(ctx, c.individualKey(group, objectiveID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get individual trend: %w", err)
	}

	var series []okr.ObjectiveSeries
	if err := json.Unmarshal([]byte(raw), &series); err != nil {
		return nil, false, fmt.Errorf("unmarshal individual trend: %w", err)
	}
	return series, true, nil
}

// SetIndividual caches a per-objective series response.
func (c *Cache) SetIndividual(ctx context.Context, group, objectiveID string, series []okr.ObjectiveSeries) error {
	raw, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("marshal individual trend: %w", err)
	}
	if err := c.client.Set(ctx, c.individualKey(group, objectiveID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set individual trend: %w", err)
	}
	return nil
}

// Invalidate drops every cached trend. Called after each document mutation.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan trend keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete trend keys: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
