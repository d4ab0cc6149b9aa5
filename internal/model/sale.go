package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodMobilePayment PaymentMethod = "mobile_payment"
	PaymentMethodOther         PaymentMethod = "other"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobilePayment, PaymentMethodOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Sale is immutable once created except for the completed -> refunded transition.
type Sale struct {
	BaseModel
	MerchantID    string          `db:"merchant_id" json:"merchantId"`
	SaleNumber    string          `db:"sale_number" json:"saleNumber"`
	CashierID     string          `db:"cashier_id" json:"cashierId"`
	Items         []SaleItem      `db:"-" json:"items"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax           decimal.Decimal `db:"tax" json:"tax"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	Total         decimal.Decimal `db:"total" json:"total"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	RefundReason  *string         `db:"refund_reason" json:"refundReason,omitempty"`
	RefundedAt    *time.Time      `db:"refunded_at" json:"refundedAt,omitempty"`
}

type SaleItem struct {
	ID          string          `db:"id" json:"id"`
	SaleID      string          `db:"sale_id" json:"-"`
	LineNo      int             `db:"line_no" json:"-"`
	ProductID   string          `db:"product_id" json:"productId"`
	SKU         string          `db:"sku" json:"sku"`
	Name        string          `db:"name" json:"name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	PriceAtSale decimal.Decimal `db:"price_at_sale" json:"priceAtSale"`
	Discount    decimal.Decimal `db:"discount" json:"discount"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
}
