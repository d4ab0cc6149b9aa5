package tenant

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Settings are the tenant values the sales core reads as plain inputs.
type Settings struct {
	TenantID string
	TaxRate  decimal.Decimal
	Currency string
	Location *time.Location
}

type Provider interface {
	Settings(ctx context.Context, tenantID string) (*Settings, error)
}

type provider struct {
	repo       Repository
	defaultLoc *time.Location
}

// NewProvider resolves settings from repo. Tenants without a row get tax 0, USD and defaultLoc.
func NewProvider(repo Repository, defaultLoc *time.Location) Provider {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &provider{repo: repo, defaultLoc: defaultLoc}
}

func (p *provider) Settings(ctx context.Context, tenantID string) (*Settings, error) {
	t, err := p.repo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s := &Settings{
		TenantID: tenantID,
		TaxRate:  decimal.Zero,
		Currency: "USD",
		Location: p.defaultLoc,
	}
	if t == nil {
		return s, nil
	}
	s.TaxRate = t.TaxRate
	if t.Currency != "" {
		s.Currency = t.Currency
	}
	if t.Timezone != "" {
		if loc, err := time.LoadLocation(t.Timezone); err == nil {
			s.Location = loc
		}
	}
	return s, nil
}
