package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidMoney(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"10.5", true},
		{"10.50", true},
		{"10.500", true},
		{"0.005", false},
		{"-1.25", true},
		{"9999999999999.99", true},
		{"10000000000000", false},
	}
	for _, tt := range tests {
		if got := ValidMoney(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("ValidMoney(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
