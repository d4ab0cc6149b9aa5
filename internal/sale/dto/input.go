package dto

import (
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/shopspring/decimal"
)

// CartItemInput references the product by ProductID, or by SKU when ProductID is empty.
type CartItemInput struct {
	ProductID string
	SKU       string
	Quantity  int
	Discount  decimal.Decimal
}

type CreateSaleInput struct {
	MerchantID    string
	CashierID     string
	Items         []CartItemInput
	PaymentMethod model.PaymentMethod
	Discount      decimal.Decimal
	Notes         *string
}

type RefundSaleInput struct {
	MerchantID string
	SaleID     string
	Reason     string
	UserID     string
}

type CartItemRequest struct {
	ProductID string           `json:"productId"`
	SKU       string           `json:"sku"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	Discount  *decimal.Decimal `json:"discount"`
}

type CreateSaleRequest struct {
	Items         []CartItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string            `json:"paymentMethod" binding:"required,oneof=cash card mobile_payment other"`
	Discount      *decimal.Decimal  `json:"discount"`
	Notes         *string           `json:"notes" binding:"omitempty,max=500"`
}

type RefundSaleRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type SalesReportQuery struct {
	StartDate     string `form:"startDate"`
	EndDate       string `form:"endDate"`
	CashierID     string `form:"cashierId"`
	PaymentMethod string `form:"paymentMethod" binding:"omitempty,oneof=cash card mobile_payment other"`
	MinAmount     string `form:"minAmount"`
	MaxAmount     string `form:"maxAmount"`
}
