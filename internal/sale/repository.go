package sale

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/sale/dto"
)

// Repository reads sales. FindByID returns (nil, nil) when the sale is absent.
type Repository interface {
	FindByID(ctx context.Context, merchantID, id string) (*model.Sale, error)
	// FindAll returns matching sales with their items, newest first.
	FindAll(ctx context.Context, filters *dto.SaleFilters) ([]model.Sale, error)

	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(tx TxRepository) error) error
}

// TxRepository spans stock and sale writes in one transaction.
type TxRepository interface {
	Stock() inventory.TxRepository
	// NextSequence atomically increments and returns the (merchant, day) sale counter.
	NextSequence(ctx context.Context, merchantID, day string) (int, error)
	Create(ctx context.Context, sale *model.Sale) error
	// FindByID locks the sale row until the transaction ends.
	FindByID(ctx context.Context, merchantID, id string) (*model.Sale, error)
	// MarkRefunded moves a completed sale to refunded. It reports false when the sale was not completed.
	MarkRefunded(ctx context.Context, merchantID, id string, reason *string, at time.Time) (bool, error)
}
