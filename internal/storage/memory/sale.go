package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/sale"
	"github.com/fekuna/omnipos-sales-service/internal/sale/dto"
)

type SaleRepository struct {
	s *Store
}

func (r *SaleRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.saleByID(merchantID, id), nil
}

func (r *SaleRepository) FindAll(ctx context.Context, f *dto.SaleFilters) ([]model.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := []model.Sale{}
	for _, s := range r.s.sales {
		if s.MerchantID != f.MerchantID {
			continue
		}
		if f.StartDate != nil && s.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && s.CreatedAt.After(*f.EndDate) {
			continue
		}
		if f.CashierID != "" && s.CashierID != f.CashierID {
			continue
		}
		if f.PaymentMethod != "" && s.PaymentMethod != f.PaymentMethod {
			continue
		}
		if f.MinAmount != nil && s.Total.LessThan(*f.MinAmount) {
			continue
		}
		if f.MaxAmount != nil && s.Total.GreaterThan(*f.MaxAmount) {
			continue
		}
		matched = append(matched, *copySale(s))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].SaleNumber > matched[j].SaleNumber
	})
	return matched, nil
}

func (r *SaleRepository) RunInTx(ctx context.Context, fn func(tx sale.TxRepository) error) error {
	return r.s.runInTx(ctx, func(t *tx) error {
		return fn(&saleTx{tx: t, stock: &stockTx{tx: t}})
	})
}

func (s *Store) saleByID(merchantID, id string) *model.Sale {
	found, ok := s.sales[id]
	if !ok || found.MerchantID != merchantID {
		return nil
	}
	return copySale(found)
}

type saleTx struct {
	tx    *tx
	stock *stockTx
}

func (t *saleTx) Stock() inventory.TxRepository {
	return t.stock
}

func (t *saleTx) NextSequence(_ context.Context, merchantID, day string) (int, error) {
	s := t.tx.s
	key := counterKey(merchantID, day)
	s.counters[key]++
	t.tx.onRollback(func() { s.counters[key]-- })
	return s.counters[key], nil
}

func (t *saleTx) Create(_ context.Context, sl *model.Sale) error {
	s := t.tx.s
	numberKey := sl.MerchantID + "\x00" + sl.SaleNumber
	if _, exists := s.saleNumbers[numberKey]; exists {
		return apperror.Conflict("Duplicate sale number: %s", sl.SaleNumber)
	}
	if _, exists := s.sales[sl.ID]; exists {
		return apperror.Conflict("Duplicate identifier")
	}
	s.sales[sl.ID] = copySale(sl)
	s.saleNumbers[numberKey] = sl.ID
	t.tx.onRollback(func() {
		delete(s.sales, sl.ID)
		delete(s.saleNumbers, numberKey)
	})
	return nil
}

func (t *saleTx) FindByID(_ context.Context, merchantID, id string) (*model.Sale, error) {
	return t.tx.s.saleByID(merchantID, id), nil
}

func (t *saleTx) MarkRefunded(_ context.Context, merchantID, id string, reason *string, at time.Time) (bool, error) {
	s := t.tx.s
	old, ok := s.sales[id]
	if !ok || old.MerchantID != merchantID || old.PaymentStatus != model.PaymentStatusCompleted {
		return false, nil
	}
	next := copySale(old)
	next.PaymentStatus = model.PaymentStatusRefunded
	next.RefundReason = reason
	next.RefundedAt = &at
	next.UpdatedAt = at
	s.sales[id] = next
	t.tx.onRollback(func() { s.sales[id] = old })
	return true, nil
}
