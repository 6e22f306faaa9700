package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"local-chat/config"
	"local-chat/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nothing listens on port 1, so every command fails fast
func unreachable() *config.RedisConfig {
	return &config.RedisConfig{
		Address:     "127.0.0.1",
		Port:        1,
		Prefix:      "test:",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(unreachable(), logger.NewNop())
	assert.Error(t, err)
}

func TestGetWithProtection_DegradesToLoader(t *testing.T) {
	cfg := unreachable()
	c := newRedisCache(NewClient(cfg), cfg, logger.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	calls := 0
	data, err := c.GetWithProtection(context.Background(), "models", time.Minute, func(context.Context) ([]byte, error) {
		calls++
		return []byte(`["llama2"]`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, `["llama2"]`, string(data))
	assert.Equal(t, 1, calls)
}

func TestGetWithProtection_LoaderError(t *testing.T) {
	cfg := unreachable()
	c := newRedisCache(NewClient(cfg), cfg, logger.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	boom := errors.New("boom")
	_, err := c.GetWithProtection(context.Background(), "models", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWithJitter(t *testing.T) {
	c := newRedisCache(NewClient(unreachable()), &config.RedisConfig{CacheTTL: time.Minute, CacheJitterSec: 5}, logger.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	got := c.withJitter(0)
	assert.GreaterOrEqual(t, got, time.Minute)
	assert.Less(t, got, time.Minute+5*time.Second)
	assert.Equal(t, 10*time.Second, newRedisCache(c.client, &config.RedisConfig{}, logger.NewNop()).withJitter(10*time.Second))
}

func TestKeys(t *testing.T) {
	cfg := unreachable()
	c := newRedisCache(NewClient(cfg), cfg, logger.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, "test:models", c.key("models"))
	assert.Equal(t, "test:lock:models", c.lockKey("models"))
}

func TestDelete_Unreachable(t *testing.T) {
	cfg := unreachable()
	c := newRedisCache(NewClient(cfg), cfg, logger.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	err := c.Delete(context.Background(), "models")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test:models")
}
