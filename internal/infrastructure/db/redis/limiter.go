package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// FixedWindowLimiter allows at most Limit hits per key within each Window.
// Key format: ratelimit:<key>
type FixedWindowLimiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
}

// NewFixedWindowLimiter creates a limiter on client. Non-positive limits and
// windows fall back to 10 requests per minute.
func NewFixedWindowLimiter(client redis.Cmdable, limit int, window time.Duration) *FixedWindowLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowLimiter{client: client, limit: int64(limit), window: window}
}

// Allow records a hit for key. When the key is over its limit it returns
// false and the time until the window resets. A key whose expiry cannot be
// restored is reported as an error.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := keyPrefix + key

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if n <= l.limit {
		return true, 0, nil
	}

	ttl, err := l.client.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit ttl: %w", err)
	}
	if ttl < 0 {
		// The expiry was lost (e.g. a crash between INCR and EXPIRE); restore it.
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit restore expiry: %w", err)
		}
		ttl = l.window
	}
	return false, ttl, nil
}
