package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	invDto "github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/metrics"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/reconcile"
	"github.com/fekuna/omnipos-sales-service/internal/reconcile/dto"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type reconcileUseCase struct {
	repo   inventory.Repository
	locker cache.Locker
	opts   reconcile.Options
	now    func() time.Time
	logger logger.ZapLogger
}

func NewReconcileUseCase(repo inventory.Repository, locker cache.Locker, opts reconcile.Options, now func() time.Time, log logger.ZapLogger) reconcile.UseCase {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if now == nil {
		now = time.Now
	}
	return &reconcileUseCase{
		repo:   repo,
		locker: locker,
		opts:   opts,
		now:    now,
		logger: log,
	}
}

func (uc *reconcileUseCase) BatchSync(ctx context.Context, merchantID string, items []dto.SyncItem) ([]dto.Outcome, error) {
	results := make([]dto.Outcome, len(items))

	// Snapshots of one SKU run in input order on one goroutine; distinct SKUs run in parallel.
	groups := make(map[string][]int)
	order := make([]string, 0, len(items))
	for i, item := range items {
		key := strings.TrimSpace(item.SKU)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Concurrency)
	for _, key := range order {
		indexes := groups[key]
		g.Go(func() error {
			for _, i := range indexes {
				results[i] = uc.syncItem(gctx, merchantID, items[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperror.From(err)
	}

	counts := make(map[dto.OutcomeStatus]int)
	for _, r := range results {
		counts[r.Status]++
		metrics.SyncOutcomes.WithLabelValues(string(r.Status)).Inc()
	}
	uc.logger.Info("batch sync finished",
		zap.String("merchant_id", merchantID),
		zap.Int("items", len(items)),
		zap.Int("created", counts[dto.StatusCreated]),
		zap.Int("updated", counts[dto.StatusUpdated]),
		zap.Int("skipped", counts[dto.StatusSkipped]),
		zap.Int("failed", counts[dto.StatusFailed]),
	)
	return results, nil
}

func (uc *reconcileUseCase) syncItem(ctx context.Context, merchantID string, in dto.SyncItem) dto.Outcome {
	sku := strings.TrimSpace(in.SKU)
	out := dto.Outcome{SKU: sku}

	if err := validateSnapshot(sku, &in); err != nil {
		return uc.failed(out, err)
	}
	incomingAt, hasTimestamp, err := parseTimestamp(in.UpdatedAt)
	if err != nil {
		return uc.failed(out, err)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	release, err := uc.lock(ctx, merchantID, sku)
	if err != nil {
		return uc.failed(out, err)
	}
	defer release()

	err = uc.repo.RunInTx(ctx, func(tx inventory.TxRepository) error {
		existing, err := tx.FindBySKU(ctx, merchantID, sku)
		if err != nil {
			return err
		}
		now := uc.now().UTC()

		if existing == nil {
			item, err := newStockItem(merchantID, sku, &in, now)
			if err != nil {
				return err
			}
			if err := tx.Create(ctx, item); err != nil {
				return err
			}
			out.Status, out.Data = dto.StatusCreated, item
			return nil
		}

		storedAt := existing.UpdatedAt.Truncate(time.Microsecond)
		switch {
		case hasTimestamp && incomingAt.After(storedAt):
			applySnapshot(existing, &in)
			existing.SyncStatus = model.SyncStatusSynced
			existing.LastSync = &now
			existing.UpdatedAt = now
			if err := tx.Update(ctx, existing); err != nil {
				return err
			}
			out.Status = dto.StatusUpdated
		case !hasTimestamp || (incomingAt.Equal(storedAt) && differs(existing, &in)):
			// Ambiguous: leave fields alone and park the record for manual resolution.
			if existing.SyncStatus != model.SyncStatusPending {
				if err := tx.SetSyncStatus(ctx, merchantID, existing.ID, model.SyncStatusPending); err != nil {
					return err
				}
				existing.SyncStatus = model.SyncStatusPending
			}
			out.Status, out.Conflict = dto.StatusSkipped, true
		default:
			out.Status = dto.StatusSkipped
		}
		out.Data = existing
		return nil
	})
	if err != nil {
		return uc.failed(out, err)
	}
	return out
}

func (uc *reconcileUseCase) GetPendingSync(ctx context.Context, merchantID string) ([]model.StockItem, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	items, _, err := uc.repo.FindAll(ctx, &invDto.InventoryFilters{
		MerchantID: merchantID,
		SyncStatus: model.SyncStatusPending,
	})
	if err != nil {
		return nil, apperror.From(err)
	}
	return items, nil
}

func (uc *reconcileUseCase) ResolveConflicts(ctx context.Context, merchantID string, resolutions []dto.Resolution) ([]dto.Outcome, error) {
	results := make([]dto.Outcome, len(resolutions))
	for i := range resolutions {
		results[i] = uc.resolveOne(ctx, merchantID, &resolutions[i])
		metrics.SyncOutcomes.WithLabelValues(string(results[i].Status)).Inc()
	}
	return results, nil
}

func (uc *reconcileUseCase) resolveOne(ctx context.Context, merchantID string, r *dto.Resolution) dto.Outcome {
	sku := strings.TrimSpace(r.SKU)
	out := dto.Outcome{SKU: sku, Action: r.Action}

	if sku == "" {
		return uc.failed(out, apperror.InvalidInput("sku is required"))
	}
	switch r.Action {
	case dto.ActionKeepLocal:
	case dto.ActionKeepRemote:
		if r.Data == nil {
			return uc.failed(out, apperror.InvalidInput("data is required for keep_remote"))
		}
		if err := validatePatch(r.Data); err != nil {
			return uc.failed(out, err)
		}
	default:
		return uc.failed(out, apperror.InvalidInput("Unknown action: %q", r.Action))
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	release, err := uc.lock(ctx, merchantID, sku)
	if err != nil {
		return uc.failed(out, err)
	}
	defer release()

	err = uc.repo.RunInTx(ctx, func(tx inventory.TxRepository) error {
		existing, err := tx.FindBySKU(ctx, merchantID, sku)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperror.NotFound("Product not found")
		}
		if existing.SyncStatus != model.SyncStatusPending {
			return apperror.InvalidInput("No pending conflict for %s", sku)
		}

		if r.Action == dto.ActionKeepLocal {
			if err := tx.SetSyncStatus(ctx, merchantID, existing.ID, model.SyncStatusSynced); err != nil {
				return err
			}
			existing.SyncStatus = model.SyncStatusSynced
		} else {
			now := uc.now().UTC()
			applySnapshot(existing, r.Data)
			existing.SyncStatus = model.SyncStatusSynced
			existing.LastSync = &now
			existing.UpdatedAt = now
			if err := tx.Update(ctx, existing); err != nil {
				return err
			}
		}
		out.Data = existing
		return nil
	})
	if err != nil {
		return uc.failed(out, err)
	}
	out.Status = dto.StatusResolved
	return out
}

// lock takes the per-SKU writer lock and returns its release func.
func (uc *reconcileUseCase) lock(ctx context.Context, merchantID, sku string) (func(), error) {
	return inventory.LockSKU(ctx, uc.locker, uc.opts.LockTTL, merchantID, sku, uc.logger)
}

func (uc *reconcileUseCase) failed(out dto.Outcome, err error) dto.Outcome {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindUnexpected {
		uc.logger.Error("reconcile item failed", zap.String("sku", out.SKU), zap.Error(err))
	}
	out.Status = dto.StatusFailed
	out.Data = nil
	out.Error = appErr.Message
	return out
}

func newStockItem(merchantID, sku string, in *dto.SyncItem, now time.Time) (*model.StockItem, error) {
	var missing []string
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		missing = append(missing, "name")
	}
	if in.Category == nil || strings.TrimSpace(*in.Category) == "" {
		missing = append(missing, "category")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return nil, apperror.InvalidInput("%s required to create %s", strings.Join(missing, ", "), sku)
	}

	item := &model.StockItem{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MerchantID: merchantID,
		SKU:        sku,
		SyncStatus: model.SyncStatusSynced,
		LastSync:   &now,
	}
	applySnapshot(item, in)
	return item, nil
}

// applySnapshot copies every field the client sent.
func applySnapshot(item *model.StockItem, in *dto.SyncItem) {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		item.Category = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		item.Description = in.Description
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Quantity != nil {
		item.Quantity = int(in.Quantity.IntPart())
	}
}

func differs(item *model.StockItem, in *dto.SyncItem) bool {
	if in.Name != nil && strings.TrimSpace(*in.Name) != item.Name {
		return true
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != item.Category {
		return true
	}
	if in.Description != nil && (item.Description == nil || *in.Description != *item.Description) {
		return true
	}
	if in.Price != nil && !in.Price.Equal(item.Price) {
		return true
	}
	if in.Quantity != nil && int(in.Quantity.IntPart()) != item.Quantity {
		return true
	}
	return false
}

func validateSnapshot(sku string, in *dto.SyncItem) error {
	if sku == "" {
		return apperror.InvalidInput("sku is required")
	}
	return validatePatch(in)
}

var maxQuantity = decimal.NewFromInt(model.MaxQuantity)

func validatePatch(in *dto.SyncItem) error {
	if in.Price != nil {
		if in.Price.IsNegative() {
			return apperror.InvalidInput("price must not be negative")
		}
		if !model.ValidMoney(*in.Price) {
			return apperror.InvalidInput("price must have at most 2 decimal places")
		}
	}
	if in.Quantity != nil {
		if in.Quantity.IsNegative() || !in.Quantity.IsInteger() {
			return apperror.InvalidInput("quantity must be a non-negative integer")
		}
		if in.Quantity.GreaterThan(maxQuantity) {
			return apperror.InvalidInput("quantity must be at most %d", model.MaxQuantity)
		}
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return apperror.InvalidInput("name must not be empty")
	}
	return nil
}

func parseTimestamp(value string) (time.Time, bool, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, apperror.InvalidInput("updatedAt must be an RFC 3339 timestamp")
	}
	return t.Truncate(time.Microsecond), true, nil
}
