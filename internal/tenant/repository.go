package tenant

import (
	"context"

	"github.com/fekuna/omnipos-sales-service/internal/model"
)

// Repository reads tenant settings. FindByID returns (nil, nil) for an unknown tenant.
type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Tenant, error)
	ListActive(ctx context.Context) ([]model.Tenant, error)
}
