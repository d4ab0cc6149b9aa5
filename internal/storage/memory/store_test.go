package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/sale"
	"github.com/fekuna/omnipos-sales-service/internal/sale/dto"
	"github.com/shopspring/decimal"
)

var (
	_ inventory.Repository = (*InventoryRepository)(nil)
	_ sale.Repository      = (*SaleRepository)(nil)
)

func seeded() *Store {
	s := NewStore()
	s.PutStockItem(model.StockItem{
		BaseModel:  model.BaseModel{ID: "p-1"},
		MerchantID: "m", SKU: "A", Name: "A", Price: decimal.NewFromInt(1), Quantity: 3,
	})
	return s
}

func TestRollbackUndoesEveryWrite(t *testing.T) {
	s := seeded()
	boom := errors.New("boom")
	ctx := context.Background()

	err := s.Sales().RunInTx(ctx, func(tx sale.TxRepository) error {
		if item, _ := tx.Stock().AdjustQuantity(ctx, "m", "p-1", -2); item == nil || item.Quantity != 1 {
			t.Fatalf("AdjustQuantity = %+v", item)
		}
		if err := tx.Stock().LogMovement(ctx, &model.InventoryMovement{ID: "mv", MerchantID: "m", ProductID: "p-1"}); err != nil {
			return err
		}
		if err := tx.Stock().Create(ctx, &model.StockItem{BaseModel: model.BaseModel{ID: "p-2"}, MerchantID: "m", SKU: "B"}); err != nil {
			return err
		}
		if n, _ := tx.NextSequence(ctx, "m", "2024-01-01"); n != 1 {
			t.Fatalf("NextSequence = %d", n)
		}
		if err := tx.Create(ctx, &model.Sale{BaseModel: model.BaseModel{ID: "s-1"}, MerchantID: "m", SaleNumber: "X"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	item, _ := s.Inventory().FindByID(ctx, "m", "p-1")
	if item.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", item.Quantity)
	}
	if b, _ := s.Inventory().FindBySKU(ctx, "m", "B"); b != nil {
		t.Error("created item survived rollback")
	}
	if sl, _ := s.Sales().FindByID(ctx, "m", "s-1"); sl != nil {
		t.Error("sale survived rollback")
	}
	if len(s.movements) != 0 {
		t.Errorf("movements = %d", len(s.movements))
	}
	_ = s.Sales().RunInTx(ctx, func(tx sale.TxRepository) error {
		if n, _ := tx.NextSequence(ctx, "m", "2024-01-01"); n != 1 {
			t.Errorf("counter after rollback = %d, want 1", n)
		}
		return nil
	})
}

func TestAdjustQuantityGuard(t *testing.T) {
	s := seeded()
	ctx := context.Background()
	_ = s.Inventory().RunInTx(ctx, func(tx inventory.TxRepository) error {
		if item, _ := tx.AdjustQuantity(ctx, "m", "p-1", -4); item != nil {
			t.Errorf("adjust below zero returned %+v", item)
		}
		if item, _ := tx.AdjustQuantity(ctx, "other", "p-1", 1); item != nil {
			t.Error("adjust crossed tenants")
		}
		return nil
	})
}

func TestStockQuantityStaysInRange(t *testing.T) {
	s := seeded()
	ctx := context.Background()

	tests := []struct {
		name string
		fn   func(tx inventory.TxRepository) error
	}{
		{"create negative", func(tx inventory.TxRepository) error {
			return tx.Create(ctx, &model.StockItem{BaseModel: model.BaseModel{ID: "p-2"}, MerchantID: "m", SKU: "B", Quantity: -1})
		}},
		{"update negative", func(tx inventory.TxRepository) error {
			item, _ := tx.FindByID(ctx, "m", "p-1")
			item.Quantity = -5
			return tx.Update(ctx, item)
		}},
		{"update above integer range", func(tx inventory.TxRepository) error {
			item, _ := tx.FindByID(ctx, "m", "p-1")
			item.Quantity = model.MaxQuantity + 1
			return tx.Update(ctx, item)
		}},
		{"adjust above integer range", func(tx inventory.TxRepository) error {
			_, err := tx.AdjustQuantity(ctx, "m", "p-1", model.MaxQuantity)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Inventory().RunInTx(ctx, tt.fn); err == nil {
				t.Fatal("expected the write to be refused")
			}
			item, _ := s.Inventory().FindByID(ctx, "m", "p-1")
			if item.Quantity != 3 {
				t.Errorf("quantity = %d, want 3", item.Quantity)
			}
			if b, _ := s.Inventory().FindBySKU(ctx, "m", "B"); b != nil {
				t.Error("out of range item was stored")
			}
		})
	}
}

func TestCancelledContextRollsBack(t *testing.T) {
	s := seeded()
	ctx, cancel := context.WithCancel(context.Background())
	err := s.Inventory().RunInTx(ctx, func(tx inventory.TxRepository) error {
		_, _ = tx.AdjustQuantity(ctx, "m", "p-1", -1)
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	item, _ := s.Inventory().FindByID(context.Background(), "m", "p-1")
	if item.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", item.Quantity)
	}
}

func TestSaleNumbersUniquePerTenant(t *testing.T) {
	s := seeded()
	ctx := context.Background()
	create := func(merchant, id string) error {
		return s.Sales().RunInTx(ctx, func(tx sale.TxRepository) error {
			return tx.Create(ctx, &model.Sale{BaseModel: model.BaseModel{ID: id, CreatedAt: time.Now()}, MerchantID: merchant, SaleNumber: "N-1"})
		})
	}
	if err := create("m", "s-1"); err != nil {
		t.Fatal(err)
	}
	if err := create("m2", "s-2"); err != nil {
		t.Fatalf("same number on another tenant: %v", err)
	}
	if err := create("m", "s-3"); err == nil {
		t.Fatal("duplicate sale number accepted")
	}
	all, _ := s.Sales().FindAll(ctx, &dto.SaleFilters{MerchantID: "m"})
	if len(all) != 1 {
		t.Errorf("sales for m = %d", len(all))
	}
}
