package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter shared by every API replica.
// Key format: ratelimit:<scope>:<key>:<window_start_unix>
type RateLimiter struct {
	client *redis.Client
	scope  string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit hits per key in each window.
func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		scope:  scope,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow increments the counter for key and reports whether it is still
// within the limit. The counter expires with its window.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key, l.now())

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", k, err)
	}
	return incr.Val() <= l.limit, nil
}

func (l *RateLimiter) key(key string, now time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", l.scope, key, now.Truncate(l.window).Unix())
}
