package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/period"
	"github.com/fekuna/omnipos-sales-service/internal/sale"
	"github.com/fekuna/omnipos-sales-service/internal/sale/dto"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SaleHandler struct {
	uc     sale.UseCase
	logger logger.ZapLogger
}

func NewSaleHandler(uc sale.UseCase, log logger.ZapLogger) *SaleHandler {
	return &SaleHandler{
		uc:     uc,
		logger: log,
	}
}

// CreateSale handles POST /pos/sales.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	actor, _ := auth.ActorFrom(c.Request.Context())
	input := &dto.CreateSaleInput{
		MerchantID:    actor.MerchantID,
		CashierID:     actor.UserID,
		Items:         make([]dto.CartItemInput, len(req.Items)),
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		Discount:      orZero(req.Discount),
		Notes:         req.Notes,
	}
	for i, item := range req.Items {
		input.Items[i] = dto.CartItemInput{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			Discount:  orZero(item.Discount),
		}
	}

	s, err := h.uc.CreateSale(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// GetSale handles GET /pos/sales/:saleId.
func (h *SaleHandler) GetSale(c *gin.Context) {
	s, err := h.uc.GetSale(c.Request.Context(), auth.GetMerchantID(c.Request.Context()), c.Param("saleId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// RefundSale handles POST /pos/sales/:saleId/refund.
func (h *SaleHandler) RefundSale(c *gin.Context) {
	var req dto.RefundSaleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(apperror.FromBinding(err))
			return
		}
	}

	actor, _ := auth.ActorFrom(c.Request.Context())
	s, err := h.uc.RefundSale(c.Request.Context(), &dto.RefundSaleInput{
		MerchantID: actor.MerchantID,
		SaleID:     c.Param("saleId"),
		Reason:     req.Reason,
		UserID:     actor.UserID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// SalesReport handles GET /pos/sales/report.
func (h *SaleHandler) SalesReport(c *gin.Context) {
	var q dto.SalesReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(apperror.FromBinding(err))
		return
	}

	filters, err := reportFilters(auth.GetMerchantID(c.Request.Context()), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}

	report, err := h.uc.SalesReport(c.Request.Context(), filters)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func reportFilters(merchantID string, q *dto.SalesReportQuery) (*dto.SaleFilters, error) {
	f := &dto.SaleFilters{
		MerchantID:    merchantID,
		CashierID:     q.CashierID,
		PaymentMethod: model.PaymentMethod(q.PaymentMethod),
	}

	var err error
	if f.StartDate, err = period.ParseStart(q.StartDate); err != nil {
		return nil, apperror.InvalidInput("startDate: %s", err.Error())
	}
	if f.EndDate, err = period.ParseEnd(q.EndDate); err != nil {
		return nil, apperror.InvalidInput("endDate: %s", err.Error())
	}
	if f.MinAmount, err = parseAmount(q.MinAmount); err != nil {
		return nil, apperror.InvalidInput("minAmount must be a number")
	}
	if f.MaxAmount, err = parseAmount(q.MaxAmount); err != nil {
		return nil, apperror.InvalidInput("maxAmount must be a number")
	}
	return f, nil
}

func parseAmount(value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
