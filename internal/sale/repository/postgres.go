package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	invRepo "github.com/fekuna/omnipos-sales-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/sale"
	"github.com/fekuna/omnipos-sales-service/internal/sale/dto"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Sale, error) {
	if !postgres.ValidUUID(id) {
		return nil, nil
	}
	return getSale(ctx, r.DB, `SELECT * FROM sales WHERE merchant_id = $1 AND id = $2`, merchantID, id)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.SaleFilters) ([]model.Sale, error) {
	conditions := []string{"merchant_id = :merchant_id"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}

	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}
	if f.CashierID != "" {
		conditions = append(conditions, "cashier_id = :cashier_id")
		args["cashier_id"] = f.CashierID
	}
	if f.PaymentMethod != "" {
		conditions = append(conditions, "payment_method = :payment_method")
		args["payment_method"] = string(f.PaymentMethod)
	}
	if f.MinAmount != nil {
		conditions = append(conditions, "total >= :min_amount")
		args["min_amount"] = *f.MinAmount
	}
	if f.MaxAmount != nil {
		conditions = append(conditions, "total <= :max_amount")
		args["max_amount"] = *f.MaxAmount
	}

	query := "SELECT * FROM sales WHERE " + strings.Join(conditions, " AND ") + " ORDER BY created_at DESC, sale_number DESC"
	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	sales := []model.Sale{}
	if err := nstmt.SelectContext(ctx, &sales, args); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *PGRepository) loadItems(ctx context.Context, sales []model.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	index := make(map[string]int, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
		index[sales[i].ID] = i
		sales[i].Items = []model.SaleItem{}
	}

	query, args, err := sqlx.In(`SELECT * FROM sale_items WHERE sale_id IN (?) ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return err
	}
	// Rebind for Postgres ($1, $2...)
	query = r.DB.Rebind(query)

	var items []model.SaleItem
	if err := r.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return err
	}
	for _, item := range items {
		i := index[item.SaleID]
		sales[i].Items = append(sales[i].Items, item)
	}
	return nil
}

func (r *PGRepository) RunInTx(ctx context.Context, fn func(tx sale.TxRepository) error) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		return fn(&txRepository{tx: tx, stock: invRepo.NewTxRepository(tx)})
	})
}

type txRepository struct {
	tx    *sqlx.Tx
	stock *invRepo.TxRepository
}

func (r *txRepository) Stock() inventory.TxRepository {
	return r.stock
}

func (r *txRepository) NextSequence(ctx context.Context, merchantID, day string) (int, error) {
	var seq int
	err := r.tx.GetContext(ctx, &seq, `
        INSERT INTO sale_counters (merchant_id, day, last_value)
        VALUES ($1, $2, 1)
        ON CONFLICT (merchant_id, day)
        DO UPDATE SET last_value = sale_counters.last_value + 1
        RETURNING last_value
    `, merchantID, day)
	return seq, err
}

func (r *txRepository) Create(ctx context.Context, s *model.Sale) error {
	query := `
        INSERT INTO sales (
            id, merchant_id, sale_number, cashier_id,
            subtotal, tax, discount, total,
            payment_method, payment_status, notes,
            refund_reason, refunded_at, created_at, updated_at
        )
        VALUES (
            :id, :merchant_id, :sale_number, :cashier_id,
            :subtotal, :tax, :discount, :total,
            :payment_method, :payment_status, :notes,
            :refund_reason, :refunded_at, :created_at, :updated_at
        )
    `
	if _, err := r.tx.NamedExecContext(ctx, query, s); err != nil {
		return err
	}

	itemsQuery := `
        INSERT INTO sale_items (
            id, sale_id, line_no, product_id, sku, name,
            quantity, price_at_sale, discount, subtotal
        )
        VALUES (
            :id, :sale_id, :line_no, :product_id, :sku, :name,
            :quantity, :price_at_sale, :discount, :subtotal
        )
    `
	_, err := r.tx.NamedExecContext(ctx, itemsQuery, s.Items)
	return err
}

func (r *txRepository) FindByID(ctx context.Context, merchantID, id string) (*model.Sale, error) {
	if !postgres.ValidUUID(id) {
		return nil, nil
	}
	return getSale(ctx, r.tx, `SELECT * FROM sales WHERE merchant_id = $1 AND id = $2 FOR UPDATE`, merchantID, id)
}

func (r *txRepository) MarkRefunded(ctx context.Context, merchantID, id string, reason *string, at time.Time) (bool, error) {
	res, err := r.tx.ExecContext(ctx, `
        UPDATE sales
        SET payment_status = $3, refund_reason = $4, refunded_at = $5, updated_at = $5
        WHERE merchant_id = $1 AND id = $2 AND payment_status = $6
    `, merchantID, id, string(model.PaymentStatusRefunded), reason, at, string(model.PaymentStatusCompleted))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func getSale(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.Sale, error) {
	var s model.Sale
	if err := sqlx.GetContext(ctx, q, &s, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	s.Items = []model.SaleItem{}
	if err := sqlx.SelectContext(ctx, q, &s.Items, `SELECT * FROM sale_items WHERE sale_id = $1 ORDER BY line_no`, s.ID); err != nil {
		return nil, err
	}
	return &s, nil
}
