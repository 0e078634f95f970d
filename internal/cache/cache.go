// Package cache wraps the Redis connection used by the ASIS API for
// health reporting and research result caching.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// searchTTL is how long cached research results stay fresh. Upstream
// indexes update on the order of hours, not seconds.
const searchTTL = 15 * time.Minute

// Cache wraps a Redis client.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.Info("Connected to Redis")
	return &Cache{client: client}, nil
}

// Ping verifies the Redis connection is alive.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

// SearchKey derives the cache key for a research search. The query is
// hashed so arbitrary user input never lands in a key.
func SearchKey(query string, maxResults int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("asis:search:%s:%d", hex.EncodeToString(sum[:8]), maxResults)
}

// GetJSON fetches a cached JSON value into dest. Returns false on a
// cache miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry is treated as a miss; the caller overwrites it.
		return false, nil
	}
	return true, nil
}

// SetSearchResults caches a JSON value under the search TTL.
func (c *Cache) SetSearchResults(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, searchTTL).Err()
}
