package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Key(t *testing.T) {
	l := NewRateLimiter(nil, "auth", 5, time.Minute)
	at := time.Date(2024, 3, 1, 10, 15, 42, 0, time.UTC)

	assert.Equal(t, "ratelimit:auth:10.0.0.1:1709288100", l.key("10.0.0.1", at))
	assert.Equal(t, l.key("10.0.0.1", at), l.key("10.0.0.1", at.Add(17*time.Second)))
	assert.NotEqual(t, l.key("10.0.0.1", at), l.key("10.0.0.1", at.Add(time.Minute)))
}

func TestNewRateLimiter_DefaultWindow(t *testing.T) {
	l := NewRateLimiter(nil, "auth", 5, 0)
	assert.Equal(t, time.Minute, l.window)
}

func TestRateLimiter_Allow_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRateLimiter(client, "auth", 5, time.Minute)
	ok, err := l.Allow(context.Background(), "10.0.0.1")
	require.Error(t, err)
	assert.False(t, ok)
}
