package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter shared by every instance of the
// service. The window starts at the first attempt for a key.
type RedisLimiter struct {
	client   *redis.Client
	prefix   string
	limit    int
	interval time.Duration
}

// NewRedisLimiter creates a new RedisLimiter instance.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, interval time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		prefix:   prefix,
		limit:    limit,
		interval: interval,
	}
}

// incrWithExpiry sets the expiry only on the first increment, so the window
// stays anchored at the first attempt.
var incrWithExpiry = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func (l *RedisLimiter) key(k string) string {
	return fmt.Sprintf("%s:%s", l.prefix, k)
}

// Allow counts one attempt for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := incrWithExpiry.Run(ctx, l.client, []string{l.key(key)}, l.interval.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to count attempt: %w", err)
	}
	return n <= int64(l.limit), nil
}

// Reset clears the attempts for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}
