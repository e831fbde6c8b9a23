package policy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DecisionCache stores enforcement decisions by request key.
type DecisionCache interface {
	// Get returns the cached decision and whether one was found.
	Get(ctx context.Context, key string) (allowed, found bool, err error)
	// Set stores a decision for ttl.
	Set(ctx context.Context, key string, allowed bool, ttl time.Duration) error
	// Clear drops every cached decision.
	Clear(ctx context.Context) error
}

// CachedConfig holds configuration for a cached enforcer
type CachedConfig struct {
	// TTL is how long a decision is reused
	TTL time.Duration
	// Logger receives cache errors. Cache failures fall back to the enforcer.
	Logger *zap.Logger
}

// DefaultCachedConfig returns the default cached enforcer configuration
func DefaultCachedConfig() CachedConfig {
	return CachedConfig{TTL: time.Minute}
}

// Cached reuses decisions of an Enforcer.
type Cached struct {
	next   Enforcer
	cache  DecisionCache
	config CachedConfig
}

// NewCached wraps next with cache.
func NewCached(next Enforcer, cache DecisionCache, config CachedConfig) *Cached {
	if config.TTL <= 0 {
		config.TTL = DefaultCachedConfig().TTL
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &Cached{next: next, cache: cache, config: config}
}

// Enforce implements Enforcer.
func (c *Cached) Enforce(ctx context.Context, req Request) (bool, error) {
	key := req.String()
	allowed, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.config.Logger.Warn("policy cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		return allowed, nil
	}

	allowed, err = c.next.Enforce(ctx, req)
	if err != nil {
		return false, err
	}
	if err := c.cache.Set(ctx, key, allowed, c.config.TTL); err != nil {
		c.config.Logger.Warn("policy cache write failed", zap.String("key", key), zap.Error(err))
	}
	return allowed, nil
}

// Invalidate clears the cache, typically after a policy reload.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// MemoryCache implements an in-memory decision cache with TTL support
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]cacheItem
	now   func() time.Time
}

// cacheItem represents an item stored in the cache
type cacheItem struct {
	allowed    bool
	expiration time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]cacheItem), now: time.Now}
}

// Get implements DecisionCache.
func (m *MemoryCache) Get(_ context.Context, key string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return false, false, nil
	}
	if m.now().After(item.expiration) {
		delete(m.items, key)
		return false, false, nil
	}
	return item.allowed, true, nil
}

// Set implements DecisionCache.
func (m *MemoryCache) Set(_ context.Context, key string, allowed bool, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = cacheItem{allowed: allowed, expiration: m.now().Add(ttl)}
	return nil
}

// Clear implements DecisionCache.
func (m *MemoryCache) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.items)
	return nil
}

// RedisCache implements a Redis-backed decision cache
type RedisCache struct {
	client *redis.Client
	prefix string
}

// DefaultRedisPrefix is prepended to every decision key.
const DefaultRedisPrefix = "crudkit:policy:"

// NewRedisCache creates a decision cache on an existing client. An empty
// prefix uses DefaultRedisPrefix.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get implements DecisionCache.
func (r *RedisCache) Get(ctx context.Context, key string) (bool, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, false, nil
		}
		return false, false, err
	}
	return value == "1", true, nil
}

// Set implements DecisionCache.
func (r *RedisCache) Set(ctx context.Context, key string, allowed bool, ttl time.Duration) error {
	value := "0"
	if allowed {
		value = "1"
	}
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Clear implements DecisionCache.
func (r *RedisCache) Clear(ctx context.Context) error {
	// Use SCAN to find all keys with our prefix
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
