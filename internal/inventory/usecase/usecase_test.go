package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/storage/memory"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/shopspring/decimal"
)

const merchant = "tenant-1"

func newStore() *memory.Store {
	store := memory.NewStore()
	store.PutStockItem(model.StockItem{
		BaseModel:    model.BaseModel{ID: "p-1", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		MerchantID:   merchant,
		SKU:          "SOAP",
		Name:         "Soap",
		Category:     "home",
		Price:        decimal.NewFromInt(4),
		Quantity:     5,
		ReorderPoint: 5,
		SyncStatus:   model.SyncStatusSynced,
	})
	store.PutStockItem(model.StockItem{
		BaseModel:    model.BaseModel{ID: "p-2", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		MerchantID:   merchant,
		SKU:          "BRUSH",
		Name:         "Brush",
		Category:     "home",
		Price:        decimal.NewFromInt(6),
		Quantity:     40,
		ReorderPoint: 5,
		SyncStatus:   model.SyncStatusSynced,
	})
	return store
}

func newUseCase(store *memory.Store) inventory.UseCase {
	return NewInventoryUseCase(store.Inventory(), cache.NewLocalLocker(),
		inventory.Options{StoreTimeout: time.Second, LockTTL: time.Second}, logger.NewNop())
}

func TestAdjustInventory(t *testing.T) {
	store := newStore()
	uc := newUseCase(store)
	ctx := context.Background()

	item, err := uc.AdjustInventory(ctx, &dto.AdjustInventoryInput{
		MerchantID: merchant, ProductID: "p-1", QuantityChange: 7, Reason: "delivery", UserID: "u-1",
	})
	if err != nil {
		t.Fatalf("AdjustInventory: %v", err)
	}
	if item.Quantity != 12 {
		t.Errorf("quantity = %d, want 12", item.Quantity)
	}

	moves, total, err := uc.ListMovements(ctx, &dto.MovementFilters{MerchantID: merchant, ProductID: "p-1"})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if total != 1 || moves[0].QuantityBefore != 5 || moves[0].QuantityAfter != 12 || moves[0].Notes != "delivery" {
		t.Errorf("movements = %+v", moves)
	}
}

func TestAdjustInventoryRejects(t *testing.T) {
	tests := []struct {
		name  string
		input dto.AdjustInventoryInput
		want  apperror.Kind
	}{
		{"zero change", dto.AdjustInventoryInput{ProductID: "p-1", QuantityChange: 0}, apperror.KindInvalidInput},
		{"unknown product", dto.AdjustInventoryInput{ProductID: "nope", QuantityChange: 1}, apperror.KindNotFound},
		{"below zero", dto.AdjustInventoryInput{ProductID: "p-1", QuantityChange: -6}, apperror.KindInsufficientStock},
		{"change beyond range", dto.AdjustInventoryInput{ProductID: "p-1", QuantityChange: model.MaxQuantity + 1}, apperror.KindInvalidInput},
		{"result beyond range", dto.AdjustInventoryInput{ProductID: "p-1", QuantityChange: model.MaxQuantity}, apperror.KindInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore()
			uc := newUseCase(store)
			in := tt.input
			in.MerchantID = merchant

			if _, err := uc.AdjustInventory(context.Background(), &in); apperror.KindOf(err) != tt.want {
				t.Fatalf("err = %v, want %s", err, tt.want)
			}
			item, _ := uc.GetStockItem(context.Background(), merchant, "p-1")
			if item.Quantity != 5 {
				t.Errorf("quantity = %d, want 5", item.Quantity)
			}
			_, total, _ := uc.ListMovements(context.Background(), &dto.MovementFilters{MerchantID: merchant})
			if total != 0 {
				t.Errorf("movements = %d, want 0", total)
			}
		})
	}
}

func TestAdjustToExactlyZero(t *testing.T) {
	uc := newUseCase(newStore())
	item, err := uc.AdjustInventory(context.Background(), &dto.AdjustInventoryInput{MerchantID: merchant, ProductID: "p-1", QuantityChange: -5})
	if err != nil {
		t.Fatalf("AdjustInventory: %v", err)
	}
	if item.Quantity != 0 {
		t.Errorf("quantity = %d", item.Quantity)
	}
}

func TestListStockItems(t *testing.T) {
	uc := newUseCase(newStore())
	ctx := context.Background()

	items, total, err := uc.ListStockItems(ctx, &dto.InventoryFilters{MerchantID: merchant})
	if err != nil {
		t.Fatalf("ListStockItems: %v", err)
	}
	if total != 2 || items[0].SKU != "BRUSH" {
		t.Errorf("items = %+v", items)
	}

	low, total, _ := uc.ListStockItems(ctx, &dto.InventoryFilters{MerchantID: merchant, LowStock: true})
	if total != 1 || low[0].SKU != "SOAP" {
		t.Errorf("low stock = %+v", low)
	}

	paged, total, _ := uc.ListStockItems(ctx, &dto.InventoryFilters{MerchantID: merchant, Page: 2, PageSize: 1})
	if total != 2 || len(paged) != 1 || paged[0].SKU != "SOAP" {
		t.Errorf("page 2 = %+v", paged)
	}

	if _, err := uc.GetStockItem(ctx, "someone-else", "p-1"); apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("cross-tenant read err = %v", err)
	}
}
