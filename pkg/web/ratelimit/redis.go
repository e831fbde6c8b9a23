package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces limiter keys.
const DefaultPrefix = "crudkit:ratelimit:"

// allowScript increments the window counter, starting the window on the
// first hit, and returns the count and the milliseconds left.
var allowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// Redis is a Limiter shared by every instance using the same server.
type Redis struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
}

// NewRedis allows limit requests per key in each window. An empty prefix
// uses DefaultPrefix.
func NewRedis(client redis.UniversalClient, limit int, per time.Duration, prefix string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if limit <= 0 {
		return nil, errors.New("limit must be greater than 0")
	}
	if per <= 0 {
		return nil, errors.New("window must be greater than 0")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{client: client, limit: limit, window: per, prefix: prefix}, nil
}

// Allow implements Limiter.
func (r *Redis) Allow(ctx context.Context, key string) (Info, error) {
	res, err := allowScript.Run(ctx, r.client, []string{r.prefix + key}, r.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Info{}, fmt.Errorf("redis rate limit check failed: %w", err)
	}
	if len(res) != 2 {
		return Info{}, errors.New("unexpected redis script result")
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = r.window
	}
	return newInfo(r.limit, int(res[0]), time.Now().Add(ttl)), nil
}

// Reset forgets the window of key.
func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
