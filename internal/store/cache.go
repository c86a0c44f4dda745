package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront-service/internal/models"
)

const (
	productKeyPrefix = "product:"
	productListKey   = "products:active"
	defaultCacheTTL  = 5 * time.Minute
)

// ProductCache is a read-through cache for catalog data. A (nil, nil) return
// means cache miss. Cache failures are logged by the caller and never fail
// the request.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
	Set(ctx context.Context, p *models.Product) error
	GetList(ctx context.Context) ([]*models.Product, error)
	SetList(ctx context.Context, products []*models.Product) error
	Invalidate(ctx context.Context, id int64) error
	InvalidateList(ctx context.Context) error
}

// RedisProductCache implements ProductCache using Redis.
type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProductCache creates a new Redis-based product cache.
func NewRedisProductCache(cfg config.RedisConfig) *RedisProductCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisProductCache{client: client, ttl: ttl}
}

// Get retrieves a product from cache.
func (c *RedisProductCache) Get(ctx context.Context, id int64) (*models.Product, error) {
	key := fmt.Sprintf("%s%d", productKeyPrefix, id)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}

	slog.Debug("Product cache hit", "product_id", id)
	return &p, nil
}

// Set stores a product in cache.
func (c *RedisProductCache) Set(ctx context.Context, p *models.Product) error {
	key := fmt.Sprintf("%s%d", productKeyPrefix, p.ID)

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// GetList retrieves the cached active-product list.
func (c *RedisProductCache) GetList(ctx context.Context) ([]*models.Product, error) {
	data, err := c.client.Get(ctx, productListKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var products []*models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SetList caches the active-product list.
func (c *RedisProductCache) SetList(ctx context.Context, products []*models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productListKey, data, c.ttl).Err()
}

// Invalidate removes one product from cache.
func (c *RedisProductCache) Invalidate(ctx context.Context, id int64) error {
	key := fmt.Sprintf("%s%d", productKeyPrefix, id)
	return c.client.Del(ctx, key).Err()
}

// InvalidateList removes the cached product list.
func (c *RedisProductCache) InvalidateList(ctx context.Context) error {
	return c.client.Del(ctx, productListKey).Err()
}
