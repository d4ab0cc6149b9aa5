package reconcile

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/reconcile/dto"
)

// UseCase reconciles client-side stock snapshots against the store.
// Per-item problems are reported in the outcomes; the returned error is reserved for the call as a whole.
type UseCase interface {
	BatchSync(ctx context.Context, merchantID string, items []dto.SyncItem) ([]dto.Outcome, error)
	GetPendingSync(ctx context.Context, merchantID string) ([]model.StockItem, error)
	ResolveConflicts(ctx context.Context, merchantID string, resolutions []dto.Resolution) ([]dto.Outcome, error)
}

type Options struct {
	StoreTimeout time.Duration
	LockTTL      time.Duration
	Concurrency  int
}
