package dto

import (
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
)

type InventoryFilters struct {
	MerchantID string
	LowStock   bool // quantity <= reorder_point and reorder_point > 0
	SyncStatus model.SyncStatus
	Page       int
	PageSize   int
}

type MovementFilters struct {
	MerchantID   string
	ProductID    string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}

type ListStockItemsResponse struct {
	Items []model.StockItem `json:"items"`
	Total int               `json:"total"`
}

type ListMovementsResponse struct {
	Items []model.InventoryMovement `json:"items"`
	Total int                       `json:"total"`
}
