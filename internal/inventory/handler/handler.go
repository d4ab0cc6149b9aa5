package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/period"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

const defaultPageSize = 50

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

// ListStockItems handles GET /inventory.
func (h *InventoryHandler) ListStockItems(c *gin.Context) {
	var q dto.ListStockItemsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	filters := &dto.InventoryFilters{
		MerchantID: auth.GetMerchantID(c.Request.Context()),
		LowStock:   q.LowStock,
		SyncStatus: model.SyncStatus(q.SyncStatus),
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	if filters.PageSize == 0 {
		filters.PageSize = defaultPageSize
	}

	items, total, err := h.uc.ListStockItems(c.Request.Context(), filters)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ListStockItemsResponse{Items: items, Total: total})
}

// GetStockItem handles GET /inventory/:productId.
func (h *InventoryHandler) GetStockItem(c *gin.Context) {
	item, err := h.uc.GetStockItem(c.Request.Context(), auth.GetMerchantID(c.Request.Context()), c.Param("productId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// AdjustInventory handles POST /inventory/:productId/adjust.
func (h *InventoryHandler) AdjustInventory(c *gin.Context) {
	var req dto.AdjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	actor, _ := auth.ActorFrom(c.Request.Context())
	input := &dto.AdjustInventoryInput{
		MerchantID:     actor.MerchantID,
		ProductID:      c.Param("productId"),
		QuantityChange: *req.QuantityChange,
		Reason:         req.Reason,
		ReferenceID:    req.ReferenceID,
		ReferenceType:  "manual_adjustment",
		UserID:         actor.UserID,
	}

	item, err := h.uc.AdjustInventory(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListMovements handles GET /inventory/movements.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var q dto.ListMovementsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	start, err := period.ParseStart(q.StartDate)
	if err != nil {
		_ = c.Error(apperror.InvalidInput("startDate: %s", err.Error()))
		return
	}
	end, err := period.ParseEnd(q.EndDate)
	if err != nil {
		_ = c.Error(apperror.InvalidInput("endDate: %s", err.Error()))
		return
	}

	filters := &dto.MovementFilters{
		MerchantID:   auth.GetMerchantID(c.Request.Context()),
		ProductID:    q.ProductID,
		MovementType: q.MovementType,
		StartDate:    start,
		EndDate:      end,
		Page:         q.Page,
		PageSize:     q.PageSize,
	}
	if filters.PageSize == 0 {
		filters.PageSize = defaultPageSize
	}

	items, total, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ListMovementsResponse{Items: items, Total: total})
}
