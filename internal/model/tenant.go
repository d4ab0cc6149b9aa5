package model

import "github.com/shopspring/decimal"

// Tenant holds the settings the sales core reads; its lifecycle is owned elsewhere.
type Tenant struct {
	ID       string          `db:"id" json:"id"`
	Name     string          `db:"name" json:"name"`
	TaxRate  decimal.Decimal `db:"tax_rate" json:"taxRate"`
	Currency string          `db:"currency" json:"currency"`
	Timezone string          `db:"timezone" json:"timezone"`
	IsActive bool            `db:"is_active" json:"isActive"`
}
