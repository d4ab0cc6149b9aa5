package memory

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
)

type InventoryRepository struct {
	s *Store
}

func (r *InventoryRepository) FindByID(ctx context.Context, merchantID, id string) (*model.StockItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.itemByID(merchantID, id), nil
}

func (r *InventoryRepository) FindBySKU(ctx context.Context, merchantID, sku string) (*model.StockItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.itemBySKU(merchantID, sku), nil
}

func (r *InventoryRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.StockItem, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := []model.StockItem{}
	for _, item := range r.s.items {
		if item.MerchantID != f.MerchantID {
			continue
		}
		if f.LowStock && !(item.ReorderPoint > 0 && item.Quantity <= item.ReorderPoint) {
			continue
		}
		if f.SyncStatus != "" && item.SyncStatus != f.SyncStatus {
			continue
		}
		matched = append(matched, *item)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SKU < matched[j].SKU })

	start, end := paginate(len(matched), f.Page, f.PageSize)
	return matched[start:end], len(matched), nil
}

func (r *InventoryRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := []model.InventoryMovement{}
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.MerchantID != f.MerchantID {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.MovementType != "" && m.MovementType != f.MovementType {
			continue
		}
		if f.StartDate != nil && m.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && m.CreatedAt.After(*f.EndDate) {
			continue
		}
		matched = append(matched, m)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start, end := paginate(len(matched), f.Page, f.PageSize)
	return matched[start:end], len(matched), nil
}

func (r *InventoryRepository) RunInTx(ctx context.Context, fn func(tx inventory.TxRepository) error) error {
	return r.s.runInTx(ctx, func(t *tx) error {
		return fn(&stockTx{tx: t})
	})
}

func (s *Store) itemByID(merchantID, id string) *model.StockItem {
	item, ok := s.items[id]
	if !ok || item.MerchantID != merchantID {
		return nil
	}
	return copyItem(item)
}

func (s *Store) itemBySKU(merchantID, sku string) *model.StockItem {
	id, ok := s.skus[skuKey(merchantID, sku)]
	if !ok {
		return nil
	}
	return copyItem(s.items[id])
}

// stockTx implements inventory.TxRepository on an open memory transaction.
type stockTx struct {
	tx *tx
}

func (t *stockTx) FindByID(_ context.Context, merchantID, id string) (*model.StockItem, error) {
	return t.tx.s.itemByID(merchantID, id), nil
}

func (t *stockTx) FindBySKU(_ context.Context, merchantID, sku string) (*model.StockItem, error) {
	return t.tx.s.itemBySKU(merchantID, sku), nil
}

func (t *stockTx) Create(_ context.Context, item *model.StockItem) error {
	if err := checkQuantity(item.Quantity); err != nil {
		return err
	}
	s := t.tx.s
	key := skuKey(item.MerchantID, item.SKU)
	if _, exists := s.skus[key]; exists {
		return apperror.Conflict("Duplicate sku: %s", item.SKU)
	}
	if _, exists := s.items[item.ID]; exists {
		return apperror.Conflict("Duplicate identifier")
	}
	s.items[item.ID] = copyItem(item)
	s.skus[key] = item.ID
	t.tx.onRollback(func() {
		delete(s.items, item.ID)
		delete(s.skus, key)
	})
	return nil
}

func (t *stockTx) Update(_ context.Context, item *model.StockItem) error {
	if err := checkQuantity(item.Quantity); err != nil {
		return err
	}
	s := t.tx.s
	old, ok := s.items[item.ID]
	if !ok || old.MerchantID != item.MerchantID {
		return errRowNotFound
	}
	next := copyItem(old)
	next.Name = item.Name
	next.Category = item.Category
	next.Description = item.Description
	next.Price = item.Price
	next.Quantity = item.Quantity
	next.ReorderPoint = item.ReorderPoint
	next.SyncStatus = item.SyncStatus
	next.LastSync = item.LastSync
	next.UpdatedAt = item.UpdatedAt
	s.items[item.ID] = next
	t.tx.onRollback(func() { s.items[item.ID] = old })
	return nil
}

func (t *stockTx) SetSyncStatus(_ context.Context, merchantID, id string, status model.SyncStatus) error {
	s := t.tx.s
	old, ok := s.items[id]
	if !ok || old.MerchantID != merchantID {
		return errRowNotFound
	}
	next := copyItem(old)
	next.SyncStatus = status
	s.items[id] = next
	t.tx.onRollback(func() { s.items[id] = old })
	return nil
}

func (t *stockTx) AdjustQuantity(_ context.Context, merchantID, id string, delta int) (*model.StockItem, error) {
	s := t.tx.s
	old, ok := s.items[id]
	if !ok || old.MerchantID != merchantID || old.Quantity+delta < 0 {
		return nil, nil
	}
	if err := checkQuantity(old.Quantity + delta); err != nil {
		return nil, err
	}
	next := copyItem(old)
	next.Quantity += delta
	next.UpdatedAt = s.now().UTC()
	s.items[id] = next
	t.tx.onRollback(func() { s.items[id] = old })
	return copyItem(next), nil
}

func (t *stockTx) LogMovement(_ context.Context, m *model.InventoryMovement) error {
	s := t.tx.s
	n := len(s.movements)
	s.movements = append(s.movements, *m)
	t.tx.onRollback(func() { s.movements = s.movements[:n] })
	return nil
}

// checkQuantity mirrors the stock_items quantity column: INTEGER with CHECK (quantity >= 0).
func checkQuantity(q int) error {
	if q < 0 {
		return apperror.InvalidInput("Stock quantity must not be negative")
	}
	if q > model.MaxQuantity {
		return apperror.InvalidInput("Stock quantity is out of range")
	}
	return nil
}
