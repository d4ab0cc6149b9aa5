package dto

type AdjustInventoryInput struct {
	MerchantID     string
	ProductID      string
	QuantityChange int
	Reason         string
	ReferenceID    string
	ReferenceType  string // 'manual_adjustment', 'stock_count'
	UserID         string
}

type AdjustInventoryRequest struct {
	QuantityChange *int   `json:"quantityChange" binding:"required"`
	Reason         string `json:"reason" binding:"required,max=255"`
	ReferenceID    string `json:"referenceId" binding:"omitempty,max=64"`
}

type ListStockItemsQuery struct {
	LowStock   bool   `form:"lowStock"`
	SyncStatus string `form:"syncStatus" binding:"omitempty,oneof=pending synced failed"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" binding:"omitempty,min=1,max=200"`
}

type ListMovementsQuery struct {
	ProductID    string `form:"productId"`
	MovementType string `form:"movementType" binding:"omitempty,oneof=sale refund adjustment sync"`
	StartDate    string `form:"startDate"`
	EndDate      string `form:"endDate"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"pageSize" binding:"omitempty,min=1,max=200"`
}
