package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/feastly/pkg/config"
	"github.com/example/feastly/pkg/models"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Cache is a thin Redis wrapper used to front the hot catalog reads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(cfg *config.RedisConfig) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		ttl: cfg.TTL,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) getJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (c *Cache) del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// CachedStore decorates a Store with best-effort Redis caching of the
// restaurant and menu listings. Cache failures are logged and the read
// falls through to the backend; writes invalidate the affected keys.
type CachedStore struct {
	Store
	cache  *Cache
	logger *zap.Logger
}

func NewCachedStore(inner Store, cache *Cache, logger *zap.Logger) *CachedStore {
	return &CachedStore{Store: inner, cache: cache, logger: logger}
}

const restaurantsKey = "catalog:restaurants"

func menuKey(restaurantID string) string {
	return fmt.Sprintf("catalog:menu:%s", restaurantID)
}

func (s *CachedStore) Restaurants(ctx context.Context) ([]models.Restaurant, error) {
	var cached []models.Restaurant
	if err := s.cache.getJSON(ctx, restaurantsKey, &cached); err == nil {
		return cached, nil
	}

	result, err := s.Store.Restaurants(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.setJSON(ctx, restaurantsKey, result); err != nil {
		s.logger.Warn("Failed to cache restaurant list", zap.Error(err))
	}
	return result, nil
}

func (s *CachedStore) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if err := s.Store.CreateRestaurant(ctx, r); err != nil {
		return err
	}
	if err := s.cache.del(ctx, restaurantsKey); err != nil {
		s.logger.Warn("Failed to invalidate restaurant cache", zap.Error(err))
	}
	return nil
}

func (s *CachedStore) MenuByRestaurant(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	var cached []models.MenuItem
	if err := s.cache.getJSON(ctx, menuKey(restaurantID), &cached); err == nil {
		return cached, nil
	}

	result, err := s.Store.MenuByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.setJSON(ctx, menuKey(restaurantID), result); err != nil {
		s.logger.Warn("Failed to cache menu", zap.String("restaurant_id", restaurantID), zap.Error(err))
	}
	return result, nil
}

func (s *CachedStore) CreateMenuItem(ctx context.Context, m *models.MenuItem) error {
	if err := s.Store.CreateMenuItem(ctx, m); err != nil {
		return err
	}
	if err := s.cache.del(ctx, menuKey(m.RestaurantID)); err != nil {
		s.logger.Warn("Failed to invalidate menu cache", zap.String("restaurant_id", m.RestaurantID), zap.Error(err))
	}
	return nil
}
