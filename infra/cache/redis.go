package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"local-chat/config"
	"local-chat/infra/logger"

	"github.com/go-redis/redis/v8"
)

type RedisCache struct {
	client *redis.Client
	prefix string
	cfg    config.RedisConfig
	log    *logger.Logger
}

func NewRedisCache(cfg *config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	c := newRedisCache(NewClient(cfg), cfg, log)
	if err := c.client.Ping(context.Background()).Err(); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// NewClient builds the go-redis client shared by the cache and the rate limiter.
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
}

func newRedisCache(client *redis.Client, cfg *config.RedisConfig, log *logger.Logger) *RedisCache {
	c := *cfg
	if c.LockMaxAttempts <= 0 {
		c.LockMaxAttempts = 5
	}
	if c.LockBackoff <= 0 {
		c.LockBackoff = 50 * time.Millisecond
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 10 * time.Second
	}
	return &RedisCache{client: client, prefix: c.Prefix, cfg: c, log: log}
}

func (r *RedisCache) Client() *redis.Client {
	return r.client
}

func (r *RedisCache) key(k string) string     { return r.prefix + k }
func (r *RedisCache) lockKey(k string) string { return r.prefix + "lock:" + k }

// GetWithProtection returns the cached value for key, or runs loader under a SETNX lock so
// only one caller refills an expired entry. Redis failures degrade to calling loader directly.
func (r *RedisCache) GetWithProtection(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	fullKey := r.key(key)

	data, err := r.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		r.log.Warn("redis get failed, loading directly", "key", fullKey, "error", err)
		return loader(ctx)
	}

	lockKey := r.lockKey(key)
	for range r.cfg.LockMaxAttempts {
		locked, err := r.client.SetNX(ctx, lockKey, "1", r.cfg.LockTTL).Result()
		if err != nil {
			return loader(ctx)
		}
		if locked {
			defer r.client.Del(context.WithoutCancel(ctx), lockKey)

			data, err = loader(ctx)
			if err != nil {
				return nil, err
			}
			if err := r.client.Set(ctx, fullKey, data, r.withJitter(ttl)).Err(); err != nil {
				r.log.Warn("redis set failed", "key", fullKey, "error", err)
			}
			return data, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.cfg.LockBackoff):
		}
		data, err = r.client.Get(ctx, fullKey).Bytes()
		if err == nil {
			return data, nil
		}
	}

	return loader(ctx)
}

// expiry spread so entries written together do not expire together
func (r *RedisCache) withJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = r.cfg.CacheTTL
	}
	if r.cfg.CacheJitterSec <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Intn(r.cfg.CacheJitterSec))*time.Second
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key(key), err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
