package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/metrics"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	locker cache.Locker
	opts   inventory.Options
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, locker cache.Locker, opts inventory.Options, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		locker: locker,
		opts:   opts,
		logger: log,
	}
}

func (uc *inventoryUseCase) GetStockItem(ctx context.Context, merchantID, productID string) (*model.StockItem, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	item, err := uc.repo.FindByID(ctx, merchantID, productID)
	if err != nil {
		return nil, apperror.From(err)
	}
	if item == nil {
		return nil, apperror.NotFound("Product not found: %s", productID)
	}
	return item, nil
}

func (uc *inventoryUseCase) ListStockItems(ctx context.Context, filters *dto.InventoryFilters) ([]model.StockItem, int, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.From(err)
	}
	return items, count, nil
}

func (uc *inventoryUseCase) AdjustInventory(ctx context.Context, input *dto.AdjustInventoryInput) (*model.StockItem, error) {
	if input.QuantityChange == 0 {
		return nil, apperror.InvalidInput("quantityChange must not be zero")
	}
	if input.QuantityChange > model.MaxQuantity || input.QuantityChange < -model.MaxQuantity {
		return nil, apperror.InvalidInput("quantityChange must be within %d", model.MaxQuantity)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	current, err := uc.repo.FindByID(ctx, input.MerchantID, input.ProductID)
	if err != nil {
		return nil, apperror.From(err)
	}
	if current == nil {
		return nil, apperror.NotFound("Product not found: %s", input.ProductID)
	}

	release, err := inventory.LockSKU(ctx, uc.locker, uc.opts.LockTTL, input.MerchantID, current.SKU, uc.logger)
	if err != nil {
		return nil, err
	}
	defer release()

	var adjusted *model.StockItem
	err = uc.repo.RunInTx(ctx, func(tx inventory.TxRepository) error {
		item, err := tx.AdjustQuantity(ctx, input.MerchantID, input.ProductID, input.QuantityChange)
		if err != nil {
			return err
		}
		if item == nil {
			return apperror.InsufficientStock(current.Name)
		}

		movement := &model.InventoryMovement{
			ID:             uuid.New().String(),
			MerchantID:     input.MerchantID,
			ProductID:      input.ProductID,
			MovementType:   model.MovementTypeAdjustment,
			QuantityChange: input.QuantityChange,
			QuantityBefore: item.Quantity - input.QuantityChange,
			QuantityAfter:  item.Quantity,
			ReferenceType:  optional(input.ReferenceType),
			ReferenceID:    optional(input.ReferenceID),
			Notes:          input.Reason,
			CreatedBy:      optional(input.UserID),
			CreatedAt:      time.Now().UTC(),
		}
		if err := tx.LogMovement(ctx, movement); err != nil {
			return err
		}
		adjusted = item
		return nil
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	metrics.InventoryAdjustments.Inc()
	uc.logger.Info("inventory adjusted",
		zap.String("merchant_id", input.MerchantID),
		zap.String("sku", adjusted.SKU),
		zap.Int("change", input.QuantityChange),
		zap.Int("quantity", adjusted.Quantity),
	)
	return adjusted, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	items, count, err := uc.repo.ListMovements(ctx, filters)
	if err != nil {
		return nil, 0, apperror.From(err)
	}
	return items, count, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
