package dto

import (
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/shopspring/decimal"
)

// SaleFilters are inclusive on both date and amount bounds.
type SaleFilters struct {
	MerchantID    string
	StartDate     *time.Time
	EndDate       *time.Time
	CashierID     string
	PaymentMethod model.PaymentMethod
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
}

type SalesSummary struct {
	TotalSales     int             `json:"totalSales"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	AverageTicket  decimal.Decimal `json:"averageTicket"`
	PaymentMethods map[string]int  `json:"paymentMethods"`
}

type SalesReport struct {
	Sales   []model.Sale `json:"sales"`
	Summary SalesSummary `json:"summary"`
}

// DailySummaryEvent is published once per tenant per day.
type DailySummaryEvent struct {
	MerchantID string       `json:"merchantId"`
	Day        string       `json:"day"`
	Summary    SalesSummary `json:"summary"`
}
