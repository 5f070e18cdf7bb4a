package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-amendment-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func catalogKey(cafeID int64) string {
	return fmt.Sprintf("catalog:%d", cafeID)
}

// GetCatalog retrieves a cached normalized catalog. Returns (nil, nil)
// on a cache miss.
func (c *Client) GetCatalog(ctx context.Context, cafeID int64) ([]models.LogicalDish, error) {
	raw, err := c.rdb.Get(ctx, catalogKey(cafeID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var dishes []models.LogicalDish
	if err := json.Unmarshal(raw, &dishes); err != nil {
		return nil, fmt.Errorf("failed to decode cached catalog: %w", err)
	}
	return dishes, nil
}

// SetCatalog caches a normalized catalog with a TTL
func (c *Client) SetCatalog(ctx context.Context, cafeID int64, dishes []models.LogicalDish, ttl time.Duration) error {
	raw, err := json.Marshal(dishes)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return c.rdb.Set(ctx, catalogKey(cafeID), raw, ttl).Err()
}

// InvalidateCatalog drops the cached catalog for a cafe
func (c *Client) InvalidateCatalog(ctx context.Context, cafeID int64) error {
	return c.rdb.Del(ctx, catalogKey(cafeID)).Err()
}
