package sale

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/sale/dto"
)

type UseCase interface {
	CreateSale(ctx context.Context, input *dto.CreateSaleInput) (*model.Sale, error)
	RefundSale(ctx context.Context, input *dto.RefundSaleInput) (*model.Sale, error)
	GetSale(ctx context.Context, merchantID, saleID string) (*model.Sale, error)
	SalesReport(ctx context.Context, filters *dto.SaleFilters) (*dto.SalesReport, error)
}

const (
	EventSaleCompleted = "sale.completed"
	EventSaleRefunded  = "sale.refunded"
	EventDailySummary  = "sales.daily_summary"
)

// EventPublisher emits domain events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, key, eventType string, payload interface{}) error
}

// SearchIndexer mirrors committed sales into a search index.
type SearchIndexer interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
}

type Options struct {
	StoreTimeout time.Duration
	// MaxAttempts bounds the retries of a sale transaction that hit a Conflict.
	MaxAttempts int
	SaleIndex   string
}
