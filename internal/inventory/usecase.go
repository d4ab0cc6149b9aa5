package inventory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
)

type UseCase interface {
	GetStockItem(ctx context.Context, merchantID, productID string) (*model.StockItem, error)
	ListStockItems(ctx context.Context, filters *dto.InventoryFilters) ([]model.StockItem, int, error)
	AdjustInventory(ctx context.Context, input *dto.AdjustInventoryInput) (*model.StockItem, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}

type Options struct {
	StoreTimeout time.Duration
	LockTTL      time.Duration
}
