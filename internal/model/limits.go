package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// Money columns are NUMERIC(15,2) and stock quantities are INTEGER.
const (
	MoneyScale  = 2
	MaxQuantity = math.MaxInt32
)

var maxMoney = decimal.New(1, 13)

// ValidMoney reports whether d is stored exactly by a money column.
func ValidMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale)) && d.Abs().LessThan(maxMoney)
}
