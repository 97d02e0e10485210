package process

import (
	"context"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisCache shares discovery manifests across processes, so a fleet of
// registry clients only pays the subprocess discovery cost once per TTL.
type RedisCache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures the cache.
type RedisOption func(*RedisCache)

// WithTTL sets the expiration for cached manifests.
func WithTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached manifests.
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisCache) {
		c.prefix = prefix
	}
}

// NewRedisCache creates a cache with its own client.
func NewRedisCache(address, password string, db int, opts ...RedisOption) *RedisCache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisCacheFromClient(rdb, opts...)
}

// NewRedisCacheFromClient creates a cache from an existing client.
func NewRedisCacheFromClient(client *backend.Client, opts ...RedisOption) *RedisCache {
	cache := &RedisCache{
		client: client,
		prefix: "graft:manifest:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get fetches a cached manifest. Backend errors, including a vanished
// server, read as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores a manifest under the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, manifest []byte) {
	c.client.Set(ctx, c.prefix+key, manifest, c.ttl)
}
