package inventory

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
)

// Repository reads tenant stock. Lookups return (nil, nil) when the record is absent.
type Repository interface {
	FindByID(ctx context.Context, merchantID, id string) (*model.StockItem, error)
	FindBySKU(ctx context.Context, merchantID, sku string) (*model.StockItem, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.StockItem, int, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)

	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(tx TxRepository) error) error
}

// TxRepository is the write side of the store, valid only inside RunInTx.
// Lookups lock the returned row until the transaction ends.
type TxRepository interface {
	FindByID(ctx context.Context, merchantID, id string) (*model.StockItem, error)
	FindBySKU(ctx context.Context, merchantID, sku string) (*model.StockItem, error)
	Create(ctx context.Context, item *model.StockItem) error
	// Update overwrites every mutable field of item, including sync status and last sync.
	Update(ctx context.Context, item *model.StockItem) error
	SetSyncStatus(ctx context.Context, merchantID, id string, status model.SyncStatus) error
	// AdjustQuantity adds delta to the on-hand quantity unless the result would be negative.
	// It returns the updated item, or nil when the row is missing or stock is insufficient.
	AdjustQuantity(ctx context.Context, merchantID, id string, delta int) (*model.StockItem, error)
	LogMovement(ctx context.Context, movement *model.InventoryMovement) error
}

// LockKey names the single-writer lock for one SKU of a tenant.
func LockKey(merchantID, sku string) string {
	return fmt.Sprintf("lock:inventory:%s:%s", merchantID, sku)
}
