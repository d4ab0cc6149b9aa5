package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/tenant"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"go.uber.org/zap"
)

// CachedRepository serves FindByID from Redis, falling back to the wrapped repository.
// Cache failures are logged and never fail the read.
type CachedRepository struct {
	next   tenant.Repository
	cache  *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewCachedRepository(next tenant.Repository, cache *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, ttl: ttl, logger: log}
}

func (r *CachedRepository) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	key := fmt.Sprintf("tenants:settings:%s", id)

	var cached model.Tenant
	found, err := r.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		r.logger.Warn("tenant cache read failed", zap.String("tenant_id", id), zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	t, err := r.next.FindByID(ctx, id)
	if err != nil || t == nil {
		return t, err
	}
	if err := r.cache.SetJSON(ctx, key, t, r.ttl); err != nil {
		r.logger.Warn("tenant cache write failed", zap.String("tenant_id", id), zap.Error(err))
	}
	return t, nil
}

func (r *CachedRepository) ListActive(ctx context.Context) ([]model.Tenant, error) {
	return r.next.ListActive(ctx)
}
