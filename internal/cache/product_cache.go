package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GTDGit/catalog_sync/internal/models"
)

// ProductCache caches single-product detail views fetched from the shop.
type ProductCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewProductCache creates a new ProductCache.
func NewProductCache(redis *RedisClient, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{redis: redis, ttl: ttl}
}

// keyByProductID returns the Redis key for a product detail.
func (c *ProductCache) keyByProductID(id int64) string {
	return fmt.Sprintf("product:detail:%d", id)
}

// Set stores a detail view until the TTL expires.
func (c *ProductCache) Set(ctx context.Context, detail *models.ProductDetail) error {
	jsonData, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal product detail: %w", err)
	}
	return c.redis.Set(ctx, c.keyByProductID(detail.ID), string(jsonData), c.ttl)
}

// Get returns the cached detail, or nil when the key is absent.
func (c *ProductCache) Get(ctx context.Context, id int64) (*models.ProductDetail, error) {
	raw, err := c.redis.Get(ctx, c.keyByProductID(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var detail models.ProductDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product detail: %w", err)
	}
	return &detail, nil
}

// Invalidate drops cached details, e.g. after a full sync.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, c.keyByProductID(id))
	}
	return c.redis.Delete(ctx, keys...)
}
