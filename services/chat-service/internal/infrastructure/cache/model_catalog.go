package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"local-chat/infra/logger"
	"local-chat/services/chat-service/internal/domain"
)

const modelsKey = "llm:models"

var errNoModels = errors.New("backend reported no models")

// ProtectedCache is satisfied by the shared redis cache.
type ProtectedCache interface {
	GetWithProtection(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) ([]byte, error)) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// CachedModelCatalog keeps the model list in redis for ttl. Empty lists are not
// cached, so a backend that comes back up is noticed on the next call.
type CachedModelCatalog struct {
	inner domain.ModelCatalog
	cache ProtectedCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedModelCatalog(inner domain.ModelCatalog, cache ProtectedCache, ttl time.Duration, log *logger.Logger) *CachedModelCatalog {
	return &CachedModelCatalog{inner: inner, cache: cache, ttl: ttl, log: log}
}

func (c *CachedModelCatalog) ListModels(ctx context.Context) []string {
	data, err := c.cache.GetWithProtection(ctx, modelsKey, c.ttl, func(ctx context.Context) ([]byte, error) {
		models := c.inner.ListModels(ctx)
		if len(models) == 0 {
			return nil, errNoModels
		}
		return json.Marshal(models)
	})
	if err != nil {
		if !errors.Is(err, errNoModels) {
			c.log.Warn("model list cache failed", "error", err)
		}
		return []string{}
	}

	var models []string
	if err := json.Unmarshal(data, &models); err != nil {
		c.log.Warn("corrupt model list in cache", "error", err)
		return c.inner.ListModels(ctx)
	}
	return models
}

func (c *CachedModelCatalog) Ping(ctx context.Context) bool { return c.inner.Ping(ctx) }

func (c *CachedModelCatalog) DefaultModel() string { return c.inner.DefaultModel() }

// Invalidate drops the cached list so the next ListModels asks the backend.
func (c *CachedModelCatalog) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, modelsKey)
}
