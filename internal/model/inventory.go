package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// StockItem is the tenant-scoped stock record for one SKU. Quantity never goes negative.
type StockItem struct {
	BaseModel
	MerchantID   string          `db:"merchant_id" json:"merchantId"`
	SKU          string          `db:"sku" json:"sku"`
	Name         string          `db:"name" json:"name"`
	Category     string          `db:"category" json:"category"`
	Description  *string         `db:"description" json:"description,omitempty"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Quantity     int             `db:"quantity" json:"quantity"`
	ReorderPoint int             `db:"reorder_point" json:"reorderPoint"`
	SyncStatus   SyncStatus      `db:"sync_status" json:"syncStatus"`
	LastSync     *time.Time      `db:"last_sync" json:"lastSync,omitempty"`
}

const (
	MovementTypeSale       = "sale"
	MovementTypeRefund     = "refund"
	MovementTypeAdjustment = "adjustment"
	MovementTypeSync       = "sync"
)

type InventoryMovement struct {
	ID             string    `db:"id" json:"id"`
	MerchantID     string    `db:"merchant_id" json:"merchantId"`
	ProductID      string    `db:"product_id" json:"productId"`
	MovementType   string    `db:"movement_type" json:"movementType"`
	QuantityChange int       `db:"quantity_change" json:"quantityChange"`
	QuantityBefore int       `db:"quantity_before" json:"quantityBefore"`
	QuantityAfter  int       `db:"quantity_after" json:"quantityAfter"`
	ReferenceType  *string   `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceID    *string   `db:"reference_id" json:"referenceId,omitempty"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
