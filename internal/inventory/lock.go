package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"go.uber.org/zap"
)

// LockSKU takes the single-writer lock for one SKU. The returned release logs instead of failing.
func LockSKU(ctx context.Context, locker cache.Locker, ttl time.Duration, merchantID, sku string, log logger.ZapLogger) (func(), error) {
	lock, err := locker.Obtain(ctx, LockKey(merchantID, sku), ttl)
	if err != nil {
		if errors.Is(err, cache.ErrLockNotObtained) {
			return nil, apperror.New(apperror.KindTimeout, "System busy, please try again later")
		}
		log.Error("failed to acquire inventory lock", zap.String("sku", sku), zap.Error(err))
		return nil, apperror.Wrap(apperror.KindStoreUnavailable, err, "The store is unavailable, please retry")
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil {
			log.Warn("failed to release inventory lock", zap.String("sku", sku), zap.Error(err))
		}
	}, nil
}
