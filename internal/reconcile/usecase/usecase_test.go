package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/reconcile"
	"github.com/fekuna/omnipos-sales-service/internal/reconcile/dto"
	"github.com/fekuna/omnipos-sales-service/internal/storage/memory"
	"github.com/fekuna/omnipos-sales-service/pkg/cache"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/shopspring/decimal"
)

const merchant = "tenant-1"

var (
	storedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fixedNow = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
)

func newTestUseCase(store *memory.Store, concurrency int) reconcile.UseCase {
	return NewReconcileUseCase(store.Inventory(), cache.NewLocalLocker(), reconcile.Options{
		StoreTimeout: 5 * time.Second,
		LockTTL:      time.Second,
		Concurrency:  concurrency,
	}, func() time.Time { return fixedNow }, logger.NewNop())
}

func seededStore() *memory.Store {
	store := memory.NewStore()
	store.PutStockItem(model.StockItem{
		BaseModel:  model.BaseModel{ID: "p-cola", CreatedAt: storedAt, UpdatedAt: storedAt},
		MerchantID: merchant,
		SKU:        "COLA",
		Name:       "Cola",
		Category:   "drinks",
		Price:      decimal.NewFromInt(2),
		Quantity:   10,
		SyncStatus: model.SyncStatusSynced,
	})
	return store
}

func str(s string) *string { return &s }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func stamp(t time.Time) string { return t.Format(time.RFC3339Nano) }

func stored(t *testing.T, store *memory.Store, sku string) *model.StockItem {
	t.Helper()
	item, err := store.Inventory().FindBySKU(context.Background(), merchant, sku)
	if err != nil || item == nil {
		t.Fatalf("FindBySKU(%s) = %v, %v", sku, item, err)
	}
	return item
}

func TestBatchSyncOutcomes(t *testing.T) {
	tests := []struct {
		name         string
		item         dto.SyncItem
		wantStatus   dto.OutcomeStatus
		wantConflict bool
		wantQty      int
		wantSync     model.SyncStatus
	}{
		{
			name:       "older snapshot is skipped",
			item:       dto.SyncItem{SKU: "COLA", Quantity: dec("3"), UpdatedAt: stamp(storedAt.Add(-time.Hour))},
			wantStatus: dto.StatusSkipped, wantQty: 10, wantSync: model.SyncStatusSynced,
		},
		{
			name:       "newer snapshot overwrites",
			item:       dto.SyncItem{SKU: "COLA", Quantity: dec("50"), Price: dec("2.5"), UpdatedAt: stamp(storedAt.Add(time.Hour))},
			wantStatus: dto.StatusUpdated, wantQty: 50, wantSync: model.SyncStatusSynced,
		},
		{
			name:       "identical tie is skipped",
			item:       dto.SyncItem{SKU: "COLA", Quantity: dec("10"), UpdatedAt: stamp(storedAt)},
			wantStatus: dto.StatusSkipped, wantQty: 10, wantSync: model.SyncStatusSynced,
		},
		{
			name:       "differing tie goes pending",
			item:       dto.SyncItem{SKU: "COLA", Quantity: dec("4"), UpdatedAt: stamp(storedAt)},
			wantStatus: dto.StatusSkipped, wantConflict: true, wantQty: 10, wantSync: model.SyncStatusPending,
		},
		{
			name:       "missing timestamp goes pending",
			item:       dto.SyncItem{SKU: "COLA", Quantity: dec("4")},
			wantStatus: dto.StatusSkipped, wantConflict: true, wantQty: 10, wantSync: model.SyncStatusPending,
		},
		{
			name:       "bad timestamp fails",
			item:       dto.SyncItem{SKU: "COLA", Quantity: dec("4"), UpdatedAt: "yesterday"},
			wantStatus: dto.StatusFailed, wantQty: 10, wantSync: model.SyncStatusSynced,
		},
		{
			name:       "negative price fails",
			item:       dto.SyncItem{SKU: "COLA", Price: dec("-1"), UpdatedAt: stamp(storedAt.Add(time.Hour))},
			wantStatus: dto.StatusFailed, wantQty: 10, wantSync: model.SyncStatusSynced,
		},
		{
			name:       "quantity beyond the column range fails",
			item:       dto.SyncItem{SKU: "COLA", Quantity: dec("10000000000000000000"), UpdatedAt: stamp(storedAt.Add(time.Hour))},
			wantStatus: dto.StatusFailed, wantQty: 10, wantSync: model.SyncStatusSynced,
		},
		{
			name:       "sub-cent price fails",
			item:       dto.SyncItem{SKU: "COLA", Price: dec("2.005"), UpdatedAt: stamp(storedAt.Add(time.Hour))},
			wantStatus: dto.StatusFailed, wantQty: 10, wantSync: model.SyncStatusSynced,
		},
		{
			name:       "fractional quantity fails",
			item:       dto.SyncItem{SKU: "COLA", Quantity: dec("1.5"), UpdatedAt: stamp(storedAt.Add(time.Hour))},
			wantStatus: dto.StatusFailed, wantQty: 10, wantSync: model.SyncStatusSynced,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			uc := newTestUseCase(store, 1)

			results, err := uc.BatchSync(context.Background(), merchant, []dto.SyncItem{tt.item})
			if err != nil {
				t.Fatalf("BatchSync: %v", err)
			}
			got := results[0]
			if got.Status != tt.wantStatus || got.Conflict != tt.wantConflict {
				t.Fatalf("outcome = %+v", got)
			}
			if got.Status == dto.StatusFailed && got.Error == "" {
				t.Error("failed outcome without error message")
			}
			item := stored(t, store, "COLA")
			if item.Quantity != tt.wantQty || item.SyncStatus != tt.wantSync {
				t.Errorf("stored quantity=%d status=%s", item.Quantity, item.SyncStatus)
			}
			if tt.wantStatus == dto.StatusUpdated {
				if item.LastSync == nil || !item.LastSync.Equal(fixedNow) || !item.UpdatedAt.Equal(fixedNow) {
					t.Errorf("LastSync=%v UpdatedAt=%v, want %v", item.LastSync, item.UpdatedAt, fixedNow)
				}
				if !item.Price.Equal(decimal.RequireFromString("2.5")) || item.Name != "Cola" {
					t.Errorf("price=%s name=%s", item.Price, item.Name)
				}
			}
		})
	}
}

func TestBatchSyncCreatesUnknownSKU(t *testing.T) {
	store := seededStore()
	uc := newTestUseCase(store, 2)

	results, err := uc.BatchSync(context.Background(), merchant, []dto.SyncItem{
		{SKU: "CHIPS", Name: str("Chips"), Category: str("snacks"), Price: dec("1.25"), Quantity: dec("7")},
		{SKU: "NUTS", Name: str("Nuts")},
		{SKU: "  "},
	})
	if err != nil {
		t.Fatalf("BatchSync: %v", err)
	}
	if results[0].Status != dto.StatusCreated || results[0].Data == nil || results[0].Data.Quantity != 7 {
		t.Errorf("created outcome = %+v", results[0])
	}
	if results[1].Status != dto.StatusFailed || results[1].SKU != "NUTS" {
		t.Errorf("incomplete create outcome = %+v", results[1])
	}
	if results[2].Status != dto.StatusFailed {
		t.Errorf("blank sku outcome = %+v", results[2])
	}

	chips := stored(t, store, "CHIPS")
	if chips.SyncStatus != model.SyncStatusSynced || chips.LastSync == nil || chips.Category != "snacks" {
		t.Errorf("created item = %+v", chips)
	}
	if item, _ := store.Inventory().FindBySKU(context.Background(), merchant, "NUTS"); item != nil {
		t.Errorf("incomplete snapshot was stored: %+v", item)
	}
}

func TestBatchSyncRejectsOutOfRangeCreate(t *testing.T) {
	store := seededStore()
	uc := newTestUseCase(store, 1)

	results, err := uc.BatchSync(context.Background(), merchant, []dto.SyncItem{
		{SKU: "NEW", Name: str("New"), Category: str("misc"), Price: dec("1"), Quantity: dec("18446744073709551615")},
	})
	if err != nil {
		t.Fatalf("BatchSync: %v", err)
	}
	if results[0].Status != dto.StatusFailed || results[0].Error == "" {
		t.Fatalf("outcome = %+v", results[0])
	}
	if item, _ := store.Inventory().FindBySKU(context.Background(), merchant, "NEW"); item != nil {
		t.Errorf("out of range snapshot was stored: %+v", item)
	}
}

func TestBatchSyncAppliesSameSKUInOrder(t *testing.T) {
	store := seededStore()
	uc := newTestUseCase(store, 4)

	later := fixedNow.Add(time.Hour)
	results, err := uc.BatchSync(context.Background(), merchant, []dto.SyncItem{
		{SKU: "TEA", Name: str("Tea"), Category: str("drinks"), Price: dec("3"), Quantity: dec("1")},
		{SKU: "TEA", Quantity: dec("9"), UpdatedAt: stamp(later)},
		{SKU: "TEA", Quantity: dec("2"), UpdatedAt: stamp(storedAt)},
	})
	if err != nil {
		t.Fatalf("BatchSync: %v", err)
	}
	want := []dto.OutcomeStatus{dto.StatusCreated, dto.StatusUpdated, dto.StatusSkipped}
	for i, w := range want {
		if results[i].Status != w {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Status, w)
		}
	}
	if got := stored(t, store, "TEA").Quantity; got != 9 {
		t.Errorf("quantity = %d, want 9", got)
	}
}

func TestBatchSyncManySKUsConcurrently(t *testing.T) {
	store := memory.NewStore()
	uc := newTestUseCase(store, 4)

	var items []dto.SyncItem
	for i := 0; i < 40; i++ {
		items = append(items, dto.SyncItem{
			SKU: fmt.Sprintf("SKU-%02d", i), Name: str("Item"), Category: str("misc"), Price: dec("1"), Quantity: dec("5"),
		})
	}
	results, err := uc.BatchSync(context.Background(), merchant, items)
	if err != nil {
		t.Fatalf("BatchSync: %v", err)
	}
	for i, r := range results {
		if r.SKU != items[i].SKU || r.Status != dto.StatusCreated {
			t.Fatalf("results[%d] = %+v", i, r)
		}
	}
}

func TestPendingAndResolve(t *testing.T) {
	store := seededStore()
	store.PutStockItem(model.StockItem{
		BaseModel:  model.BaseModel{ID: "p-water", CreatedAt: storedAt, UpdatedAt: storedAt},
		MerchantID: merchant, SKU: "WATER", Name: "Water", Category: "drinks",
		Price: decimal.NewFromInt(1), Quantity: 30, SyncStatus: model.SyncStatusSynced,
	})
	uc := newTestUseCase(store, 1)
	ctx := context.Background()

	if _, err := uc.BatchSync(ctx, merchant, []dto.SyncItem{
		{SKU: "COLA", Quantity: dec("4")},
		{SKU: "WATER", Quantity: dec("1")},
	}); err != nil {
		t.Fatalf("BatchSync: %v", err)
	}

	pending, err := uc.GetPendingSync(ctx, merchant)
	if err != nil {
		t.Fatalf("GetPendingSync: %v", err)
	}
	if len(pending) != 2 || pending[0].SKU != "COLA" || pending[1].SKU != "WATER" {
		t.Fatalf("pending = %+v", pending)
	}

	results, err := uc.ResolveConflicts(ctx, merchant, []dto.Resolution{
		{SKU: "COLA", Action: dto.ActionKeepRemote, Data: &dto.SyncItem{Quantity: dec("50")}},
		{SKU: "WATER", Action: dto.ActionKeepLocal},
		{SKU: "WATER", Action: dto.ActionKeepLocal},
		{SKU: "GHOST", Action: dto.ActionKeepLocal},
		{SKU: "COLA", Action: "merge"},
		{SKU: "COLA", Action: dto.ActionKeepRemote},
	})
	if err != nil {
		t.Fatalf("ResolveConflicts: %v", err)
	}
	want := []dto.OutcomeStatus{dto.StatusResolved, dto.StatusResolved, dto.StatusFailed, dto.StatusFailed, dto.StatusFailed, dto.StatusFailed}
	for i, w := range want {
		if results[i].Status != w {
			t.Errorf("results[%d] = %+v, want %s", i, results[i], w)
		}
	}

	cola := stored(t, store, "COLA")
	if cola.Quantity != 50 || cola.SyncStatus != model.SyncStatusSynced || cola.LastSync == nil {
		t.Errorf("cola = %+v", cola)
	}
	water := stored(t, store, "WATER")
	if water.Quantity != 30 || water.SyncStatus != model.SyncStatusSynced {
		t.Errorf("water = %+v", water)
	}

	pending, _ = uc.GetPendingSync(ctx, merchant)
	if len(pending) != 0 {
		t.Errorf("pending after resolve = %+v", pending)
	}
}

type busyLocker struct{}

func (busyLocker) Obtain(context.Context, string, time.Duration) (cache.Releaser, error) {
	return nil, cache.ErrLockNotObtained
}

func TestBatchSyncReportsBusyLock(t *testing.T) {
	store := seededStore()
	uc := NewReconcileUseCase(store.Inventory(), busyLocker{}, reconcile.Options{StoreTimeout: time.Second}, nil, logger.NewNop())

	results, err := uc.BatchSync(context.Background(), merchant, []dto.SyncItem{{SKU: "COLA", Quantity: dec("1"), UpdatedAt: stamp(fixedNow)}})
	if err != nil {
		t.Fatalf("BatchSync: %v", err)
	}
	if results[0].Status != dto.StatusFailed || results[0].Error != "System busy, please try again later" {
		t.Errorf("outcome = %+v", results[0])
	}
	if got := stored(t, store, "COLA").Quantity; got != 10 {
		t.Errorf("quantity = %d", got)
	}
}
