package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, merchantID, id string) (*model.StockItem, error) {
	if !postgres.ValidUUID(id) {
		return nil, nil
	}
	return getStockItem(ctx, r.DB, `SELECT * FROM stock_items WHERE merchant_id = $1 AND id = $2`, merchantID, id)
}

func (r *PGRepository) FindBySKU(ctx context.Context, merchantID, sku string) (*model.StockItem, error) {
	return getStockItem(ctx, r.DB, `SELECT * FROM stock_items WHERE merchant_id = $1 AND sku = $2`, merchantID, sku)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.StockItem, int, error) {
	conditions := []string{"merchant_id = :merchant_id"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}

	if f.LowStock {
		conditions = append(conditions, "quantity <= reorder_point AND reorder_point > 0")
	}
	if f.SyncStatus != "" {
		conditions = append(conditions, "sync_status = :sync_status")
		args["sync_status"] = string(f.SyncStatus)
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	count, err := namedCount(ctx, r.DB, "SELECT count(*) FROM stock_items"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM stock_items" + whereClause + " ORDER BY sku ASC" + pageClause(f.Page, f.PageSize)
	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	items := []model.StockItem{}
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	conditions := []string{"merchant_id = :merchant_id"}
	args := map[string]interface{}{"merchant_id": f.MerchantID}

	if f.ProductID != "" {
		if !postgres.ValidUUID(f.ProductID) {
			return []model.InventoryMovement{}, 0, nil
		}
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}
	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	count, err := namedCount(ctx, r.DB, "SELECT count(*) FROM inventory_movements"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC" + pageClause(f.Page, f.PageSize)
	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	items := []model.InventoryMovement{}
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) RunInTx(ctx context.Context, fn func(tx inventory.TxRepository) error) error {
	return postgres.WithTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		return fn(NewTxRepository(tx))
	})
}

// TxRepository runs the stock statements on an open transaction. The sale
// repository embeds it so decrements and the sale insert share one commit.
type TxRepository struct {
	tx *sqlx.Tx
}

func NewTxRepository(tx *sqlx.Tx) *TxRepository {
	return &TxRepository{tx: tx}
}

func (r *TxRepository) FindByID(ctx context.Context, merchantID, id string) (*model.StockItem, error) {
	if !postgres.ValidUUID(id) {
		return nil, nil
	}
	return getStockItem(ctx, r.tx, `SELECT * FROM stock_items WHERE merchant_id = $1 AND id = $2 FOR UPDATE`, merchantID, id)
}

func (r *TxRepository) FindBySKU(ctx context.Context, merchantID, sku string) (*model.StockItem, error) {
	return getStockItem(ctx, r.tx, `SELECT * FROM stock_items WHERE merchant_id = $1 AND sku = $2 FOR UPDATE`, merchantID, sku)
}

func (r *TxRepository) Create(ctx context.Context, item *model.StockItem) error {
	query := `
        INSERT INTO stock_items (
            id, merchant_id, sku, name, category, description,
            price, quantity, reorder_point, sync_status, last_sync,
            created_at, updated_at
        )
        VALUES (
            :id, :merchant_id, :sku, :name, :category, :description,
            :price, :quantity, :reorder_point, :sync_status, :last_sync,
            :created_at, :updated_at
        )
    `
	_, err := r.tx.NamedExecContext(ctx, query, item)
	return err
}

func (r *TxRepository) Update(ctx context.Context, item *model.StockItem) error {
	query := `
        UPDATE stock_items SET
            name = :name,
            category = :category,
            description = :description,
            price = :price,
            quantity = :quantity,
            reorder_point = :reorder_point,
            sync_status = :sync_status,
            last_sync = :last_sync,
            updated_at = :updated_at
        WHERE merchant_id = :merchant_id AND id = :id
    `
	res, err := r.tx.NamedExecContext(ctx, query, item)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *TxRepository) SetSyncStatus(ctx context.Context, merchantID, id string, status model.SyncStatus) error {
	res, err := r.tx.ExecContext(ctx,
		`UPDATE stock_items SET sync_status = $3 WHERE merchant_id = $1 AND id = $2`,
		merchantID, id, string(status),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *TxRepository) AdjustQuantity(ctx context.Context, merchantID, id string, delta int) (*model.StockItem, error) {
	if !postgres.ValidUUID(id) {
		return nil, nil
	}
	// Guard and write are a single statement.
	return getStockItem(ctx, r.tx, `
        UPDATE stock_items
        SET quantity = quantity + $3, updated_at = now()
        WHERE merchant_id = $1 AND id = $2 AND quantity + $3 >= 0
        RETURNING *
    `, merchantID, id, delta)
}

func (r *TxRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, merchant_id, product_id,
            movement_type, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :merchant_id, :product_id,
            :movement_type, :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	_, err := r.tx.NamedExecContext(ctx, query, m)
	return err
}

func getStockItem(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.StockItem, error) {
	var item model.StockItem
	if err := sqlx.GetContext(ctx, q, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func namedCount(ctx context.Context, db *sqlx.DB, query string, args map[string]interface{}) (int, error) {
	nstmt, err := db.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer nstmt.Close()

	var count int
	err = nstmt.GetContext(ctx, &count, args)
	return count, err
}

func pageClause(page, pageSize int) string {
	if pageSize <= 0 {
		return ""
	}
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
