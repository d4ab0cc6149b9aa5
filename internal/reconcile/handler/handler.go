package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/reconcile"
	"github.com/fekuna/omnipos-sales-service/internal/reconcile/dto"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	uc     reconcile.UseCase
	logger logger.ZapLogger
}

func NewSyncHandler(uc reconcile.UseCase, log logger.ZapLogger) *SyncHandler {
	return &SyncHandler{
		uc:     uc,
		logger: log,
	}
}

// BatchSync handles POST /sync/batch.
func (h *SyncHandler) BatchSync(c *gin.Context) {
	var req dto.BatchSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	results, err := h.uc.BatchSync(c.Request.Context(), auth.GetMerchantID(c.Request.Context()), req.Products)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ResultsResponse{Results: results})
}

// GetPendingSync handles GET /sync/pending.
func (h *SyncHandler) GetPendingSync(c *gin.Context) {
	items, err := h.uc.GetPendingSync(c.Request.Context(), auth.GetMerchantID(c.Request.Context()))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ResolveConflicts handles POST /sync/resolve.
func (h *SyncHandler) ResolveConflicts(c *gin.Context) {
	var req dto.ResolveConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	results, err := h.uc.ResolveConflicts(c.Request.Context(), auth.GetMerchantID(c.Request.Context()), req.Resolutions)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.ResultsResponse{Results: results})
}
