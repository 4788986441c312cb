package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorexhq/fleet-assistant/pkg/config"
)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:       true,
		WindowSeconds: 60,
		Limit:         10,
		Burst:         5,
		RedisPrefix:   "rate-limit",
	}
}

func fixedNow() time.Time {
	return time.UnixMilli(1_700_000_000_000)
}

// scriptArgs mirrors the argument encoding in Allow for a fixed clock.
func scriptArgs(cfg config.RateLimitConfig) []interface{} {
	windowMillis := cfg.Window().Milliseconds()
	refillRate := float64(cfg.Limit) / float64(windowMillis)
	capacity := float64(cfg.Limit + cfg.Burst)
	return []interface{}{
		fixedNow().UnixMilli(),
		formatFloat(refillRate),
		formatFloat(capacity),
		windowMillis * 2,
	}
}

func TestAllowDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	// No redis round trip happens when disabled
	limiter := NewLimiter(nil, cfg)

	result, err := limiter.Allow(context.Background(), "chat", "10.0.0.1")

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, cfg.Limit, result.Remaining)
}

func TestAllowGranted(t *testing.T) {
	cfg := testConfig()
	db, mock := redismock.NewClientMock()
	limiter := NewLimiter(db, cfg)
	limiter.WithNow(fixedNow)

	hash := redis.NewScript(tokenBucketScript).Hash()
	mock.ExpectEvalSha(hash, []string{"rate-limit:chat:10.0.0.1"}, scriptArgs(cfg)...).
		SetVal([]interface{}{int64(1), int64(14), int64(0)})

	result, err := limiter.Allow(context.Background(), "chat", "10.0.0.1")

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 14, result.Remaining)
	assert.Equal(t, time.Duration(0), result.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllowDenied(t *testing.T) {
	cfg := testConfig()
	db, mock := redismock.NewClientMock()
	limiter := NewLimiter(db, cfg)
	limiter.WithNow(fixedNow)

	hash := redis.NewScript(tokenBucketScript).Hash()
	mock.ExpectEvalSha(hash, []string{"rate-limit:chat:10.0.0.1"}, scriptArgs(cfg)...).
		SetVal([]interface{}{int64(0), int64(0), int64(5999)})

	result, err := limiter.Allow(context.Background(), "chat", "10.0.0.1")

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 5999*time.Millisecond, result.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllowRedisError(t *testing.T) {
	cfg := testConfig()
	db, mock := redismock.NewClientMock()
	limiter := NewLimiter(db, cfg)
	limiter.WithNow(fixedNow)

	hash := redis.NewScript(tokenBucketScript).Hash()
	mock.ExpectEvalSha(hash, []string{"rate-limit:chat:10.0.0.1"}, scriptArgs(cfg)...).
		SetErr(redis.ErrClosed)

	_, err := limiter.Allow(context.Background(), "chat", "10.0.0.1")

	assert.Error(t, err)
}
