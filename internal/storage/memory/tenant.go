package memory

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-sales-service/internal/model"
)

type TenantRepository struct {
	s *Store
}

func (r *TenantRepository) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// ListActive also reports tenants that only appear on sales, so the nightly summary covers them.
func (r *TenantRepository) ListActive(ctx context.Context) ([]model.Tenant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := make(map[string]bool)
	out := []model.Tenant{}
	for _, t := range r.s.tenants {
		seen[t.ID] = true
		if t.IsActive {
			out = append(out, t)
		}
	}
	for _, s := range r.s.sales {
		if !seen[s.MerchantID] {
			seen[s.MerchantID] = true
			out = append(out, model.Tenant{ID: s.MerchantID, IsActive: true})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
