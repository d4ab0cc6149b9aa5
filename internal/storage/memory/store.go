// Package memory is an in-process store behind every repository interface.
// A transaction holds the store lock from start to finish and replays an undo log on rollback,
// so it gives the same all-or-nothing and single-writer guarantees as the Postgres repositories.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
)

var errRowNotFound = errors.New("memory: row not found")

type Store struct {
	mu sync.Mutex

	items     map[string]*model.StockItem
	skus      map[string]string
	movements []model.InventoryMovement

	sales       map[string]*model.Sale
	saleNumbers map[string]string
	counters    map[string]int

	tenants map[string]model.Tenant

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		items:       make(map[string]*model.StockItem),
		skus:        make(map[string]string),
		sales:       make(map[string]*model.Sale),
		saleNumbers: make(map[string]string),
		counters:    make(map[string]int),
		tenants:     make(map[string]model.Tenant),
		now:         time.Now,
	}
}

func (s *Store) Inventory() *InventoryRepository { return &InventoryRepository{s: s} }
func (s *Store) Sales() *SaleRepository         { return &SaleRepository{s: s} }
func (s *Store) Tenants() *TenantRepository     { return &TenantRepository{s: s} }

// PutStockItem inserts or replaces an item as given, for seeding.
func (s *Store) PutStockItem(item model.StockItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.items[item.ID]; ok {
		delete(s.skus, skuKey(old.MerchantID, old.SKU))
	}
	s.items[item.ID] = copyItem(&item)
	s.skus[skuKey(item.MerchantID, item.SKU)] = item.ID
}

func (s *Store) PutTenant(t model.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
}

type tx struct {
	s    *Store
	undo []func()
}

func (t *tx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (s *Store) runInTx(ctx context.Context, fn func(t *tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{s: s}
	if err := fn(t); err != nil {
		t.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		t.rollback()
		return err
	}
	return nil
}

func skuKey(merchantID, sku string) string {
	return merchantID + "\x00" + sku
}

func counterKey(merchantID, day string) string {
	return merchantID + "\x00" + day
}

func copyItem(item *model.StockItem) *model.StockItem {
	c := *item
	return &c
}

func copySale(sale *model.Sale) *model.Sale {
	c := *sale
	c.Items = append([]model.SaleItem(nil), sale.Items...)
	if c.Items == nil {
		c.Items = []model.SaleItem{}
	}
	return &c
}

func paginate(n, page, pageSize int) (int, int) {
	if pageSize <= 0 {
		return 0, n
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > n {
		start = n
	}
	end := start + pageSize
	if end > n {
		end = n
	}
	return start, end
}
