package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/inventory"
	"github.com/fekuna/omnipos-sales-service/internal/metrics"
	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/sale"
	"github.com/fekuna/omnipos-sales-service/internal/sale/dto"
	"github.com/fekuna/omnipos-sales-service/internal/tenant"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts = 3
	sideEffectTimeout  = 10 * time.Second
)

var hundred = decimal.NewFromInt(100)

type saleUseCase struct {
	repo      sale.Repository
	tenants   tenant.Provider
	publisher sale.EventPublisher
	indexer   sale.SearchIndexer
	sequencer *sale.Sequencer
	opts      sale.Options
	now       func() time.Time
	logger    logger.ZapLogger

	indexOnce sync.Once
}

// NewSaleUseCase wires the sale engine. publisher and indexer may be nil.
func NewSaleUseCase(
	repo sale.Repository,
	tenants tenant.Provider,
	publisher sale.EventPublisher,
	indexer sale.SearchIndexer,
	opts sale.Options,
	now func() time.Time,
	log logger.ZapLogger,
) sale.UseCase {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.SaleIndex == "" {
		opts.SaleIndex = "sales"
	}
	if now == nil {
		now = time.Now
	}
	return &saleUseCase{
		repo:      repo,
		tenants:   tenants,
		publisher: publisher,
		indexer:   indexer,
		sequencer: sale.NewSequencer(now),
		opts:      opts,
		now:       now,
		logger:    log,
	}
}

func (uc *saleUseCase) CreateSale(ctx context.Context, input *dto.CreateSaleInput) (*model.Sale, error) {
	if err := validateCreateSale(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	settings, err := uc.tenants.Settings(ctx, input.MerchantID)
	if err != nil {
		return nil, apperror.From(err)
	}

	var created *model.Sale
	for attempt := 1; ; attempt++ {
		created, err = uc.createSaleTx(ctx, input, settings)
		if err == nil {
			break
		}
		if apperror.KindOf(err) != apperror.KindConflict || attempt >= uc.opts.MaxAttempts {
			return nil, apperror.From(err)
		}
		metrics.SaleRetries.Inc()
		uc.logger.Warn("sale transaction conflicted, retrying",
			zap.String("merchant_id", input.MerchantID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	metrics.SalesCreated.WithLabelValues(string(created.PaymentMethod)).Inc()
	uc.logger.Info("sale created",
		zap.String("merchant_id", created.MerchantID),
		zap.String("sale_number", created.SaleNumber),
		zap.String("total", created.Total.String()),
	)

	go uc.afterCommit(created, sale.EventSaleCompleted)

	return created, nil
}

// createSaleTx decrements every line and writes the sale in one transaction; any error undoes all of it.
func (uc *saleUseCase) createSaleTx(ctx context.Context, input *dto.CreateSaleInput, settings *tenant.Settings) (*model.Sale, error) {
	now := uc.now().UTC()
	s := &model.Sale{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		MerchantID:    input.MerchantID,
		CashierID:     input.CashierID,
		Discount:      input.Discount,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: model.PaymentStatusCompleted,
		Notes:         input.Notes,
	}

	err := uc.repo.RunInTx(ctx, func(tx sale.TxRepository) error {
		stock := tx.Stock()
		subtotal := decimal.Zero
		items := make([]model.SaleItem, 0, len(input.Items))

		for i, line := range input.Items {
			product, err := findCartProduct(ctx, stock, input.MerchantID, line)
			if err != nil {
				return err
			}
			if product == nil {
				return apperror.NotFound("Product not found: %s", cartRef(line))
			}
			if line.Quantity > product.Quantity {
				return apperror.InsufficientStock(product.Name)
			}

			gross := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			if line.Discount.GreaterThan(gross) {
				return apperror.InvalidInput("Discount for %s exceeds the line total", product.Name)
			}
			lineSubtotal := gross.Sub(line.Discount)

			updated, err := stock.AdjustQuantity(ctx, input.MerchantID, product.ID, -line.Quantity)
			if err != nil {
				return err
			}
			if updated == nil {
				return apperror.InsufficientStock(product.Name)
			}

			if err := stock.LogMovement(ctx, &model.InventoryMovement{
				ID:             uuid.New().String(),
				MerchantID:     input.MerchantID,
				ProductID:      product.ID,
				MovementType:   model.MovementTypeSale,
				QuantityChange: -line.Quantity,
				QuantityBefore: updated.Quantity + line.Quantity,
				QuantityAfter:  updated.Quantity,
				ReferenceType:  strPtr("sale"),
				ReferenceID:    strPtr(s.ID),
				CreatedBy:      strPtr(input.CashierID),
				CreatedAt:      now,
			}); err != nil {
				return err
			}

			items = append(items, model.SaleItem{
				ID:          uuid.New().String(),
				SaleID:      s.ID,
				LineNo:      i + 1,
				ProductID:   product.ID,
				SKU:         product.SKU,
				Name:        product.Name,
				Quantity:    line.Quantity,
				PriceAtSale: product.Price,
				Discount:    line.Discount,
				Subtotal:    lineSubtotal,
			})
			subtotal = subtotal.Add(lineSubtotal)
		}

		tax := subtotal.Mul(settings.TaxRate).Div(hundred).Round(2)
		if input.Discount.GreaterThan(subtotal.Add(tax)) {
			return apperror.InvalidInput("Discount exceeds the order total")
		}

		number, err := uc.sequencer.Next(ctx, tx, input.MerchantID, settings.Location)
		if err != nil {
			return err
		}

		s.SaleNumber = number
		s.Items = items
		s.Subtotal = subtotal
		s.Tax = tax
		s.Total = subtotal.Add(tax).Sub(input.Discount)

		return tx.Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *saleUseCase) RefundSale(ctx context.Context, input *dto.RefundSaleInput) (*model.Sale, error) {
	if input.SaleID == "" {
		return nil, apperror.InvalidInput("saleId is required")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	now := uc.now().UTC()
	reason := strPtr(strings.TrimSpace(input.Reason))

	var refunded *model.Sale
	err := uc.repo.RunInTx(ctx, func(tx sale.TxRepository) error {
		s, err := tx.FindByID(ctx, input.MerchantID, input.SaleID)
		if err != nil {
			return err
		}
		if s == nil {
			return apperror.NotFound("Sale not found")
		}
		switch s.PaymentStatus {
		case model.PaymentStatusRefunded:
			return apperror.AlreadyRefunded()
		case model.PaymentStatusCompleted:
		default:
			return apperror.InvalidInput("Only completed sales can be refunded, sale is %s", s.PaymentStatus)
		}

		ok, err := tx.MarkRefunded(ctx, input.MerchantID, s.ID, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.AlreadyRefunded()
		}

		stock := tx.Stock()
		for _, item := range s.Items {
			updated, err := stock.AdjustQuantity(ctx, input.MerchantID, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if updated == nil {
				return apperror.NotFound("Product not found: %s", item.ProductID)
			}
			if err := stock.LogMovement(ctx, &model.InventoryMovement{
				ID:             uuid.New().String(),
				MerchantID:     input.MerchantID,
				ProductID:      item.ProductID,
				MovementType:   model.MovementTypeRefund,
				QuantityChange: item.Quantity,
				QuantityBefore: updated.Quantity - item.Quantity,
				QuantityAfter:  updated.Quantity,
				ReferenceType:  strPtr("sale"),
				ReferenceID:    strPtr(s.ID),
				Notes:          strings.TrimSpace(input.Reason),
				CreatedBy:      strPtr(input.UserID),
				CreatedAt:      now,
			}); err != nil {
				return err
			}
		}

		s.PaymentStatus = model.PaymentStatusRefunded
		s.RefundReason = reason
		s.RefundedAt = &now
		s.UpdatedAt = now
		refunded = s
		return nil
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	metrics.SalesRefunded.Inc()
	uc.logger.Info("sale refunded",
		zap.String("merchant_id", refunded.MerchantID),
		zap.String("sale_number", refunded.SaleNumber),
	)

	go uc.afterCommit(refunded, sale.EventSaleRefunded)

	return refunded, nil
}

func (uc *saleUseCase) GetSale(ctx context.Context, merchantID, saleID string) (*model.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	s, err := uc.repo.FindByID(ctx, merchantID, saleID)
	if err != nil {
		return nil, apperror.From(err)
	}
	if s == nil {
		return nil, apperror.NotFound("Sale not found")
	}
	return s, nil
}

func (uc *saleUseCase) SalesReport(ctx context.Context, filters *dto.SaleFilters) (*dto.SalesReport, error) {
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, apperror.InvalidInput("endDate must not be before startDate")
	}
	if filters.MinAmount != nil && filters.MaxAmount != nil && filters.MaxAmount.LessThan(*filters.MinAmount) {
		return nil, apperror.InvalidInput("maxAmount must not be below minAmount")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	sales, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperror.From(err)
	}
	return &dto.SalesReport{Sales: sales, Summary: summarize(sales)}, nil
}

func summarize(sales []model.Sale) dto.SalesSummary {
	summary := dto.SalesSummary{
		TotalSales:     len(sales),
		TotalRevenue:   decimal.Zero,
		AverageTicket:  decimal.Zero,
		PaymentMethods: map[string]int{},
	}
	for _, s := range sales {
		summary.TotalRevenue = summary.TotalRevenue.Add(s.Total)
		summary.PaymentMethods[string(s.PaymentMethod)]++
	}
	if len(sales) > 0 {
		summary.AverageTicket = summary.TotalRevenue.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}
	return summary
}

// afterCommit publishes and indexes a committed sale. Failures are logged only.
func (uc *saleUseCase) afterCommit(s *model.Sale, eventType string) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, s.MerchantID, eventType, s); err != nil {
			uc.logger.Error("failed to publish sale event",
				zap.String("event_type", eventType),
				zap.String("sale_id", s.ID),
				zap.Error(err),
			)
		}
	}
	uc.syncToElastic(ctx, s)
}

func (uc *saleUseCase) syncToElastic(ctx context.Context, s *model.Sale) {
	if uc.indexer == nil {
		return
	}
	uc.indexOnce.Do(func() {
		if err := uc.indexer.CreateIndex(ctx, uc.opts.SaleIndex, saleIndexMapping); err != nil {
			uc.logger.Warn("failed to ensure sale index", zap.Error(err))
		}
	})
	if err := uc.indexer.Index(ctx, uc.opts.SaleIndex, s.ID, s); err != nil {
		uc.logger.Error("failed to index sale", zap.String("sale_id", s.ID), zap.Error(err))
	}
}

const saleIndexMapping = `{
	"mappings": {
		"properties": {
			"merchantId": { "type": "keyword" },
			"saleNumber": { "type": "keyword" },
			"cashierId": { "type": "keyword" },
			"paymentMethod": { "type": "keyword" },
			"paymentStatus": { "type": "keyword" },
			"total": { "type": "double" },
			"items": {
				"properties": {
					"sku": { "type": "keyword" },
					"name": { "type": "text" }
				}
			},
			"createdAt": { "type": "date" }
		}
	}
}`

func findCartProduct(ctx context.Context, stock inventory.TxRepository, merchantID string, line dto.CartItemInput) (*model.StockItem, error) {
	if line.ProductID != "" {
		return stock.FindByID(ctx, merchantID, line.ProductID)
	}
	return stock.FindBySKU(ctx, merchantID, line.SKU)
}

func cartRef(line dto.CartItemInput) string {
	if line.ProductID != "" {
		return line.ProductID
	}
	return line.SKU
}

func validateCreateSale(input *dto.CreateSaleInput) error {
	if len(input.Items) == 0 {
		return apperror.InvalidInput("Items are required")
	}
	if input.CashierID == "" {
		return apperror.InvalidInput("cashierId is required")
	}
	if !input.PaymentMethod.Valid() {
		return apperror.InvalidInput("Invalid payment method: %q", input.PaymentMethod)
	}
	if input.Discount.IsNegative() {
		return apperror.InvalidInput("Discount must not be negative")
	}
	if !model.ValidMoney(input.Discount) {
		return apperror.InvalidInput("Discount must have at most 2 decimal places")
	}
	for i, line := range input.Items {
		if line.ProductID == "" && line.SKU == "" {
			return apperror.InvalidInput("items[%d]: productId or sku is required", i)
		}
		if line.Quantity < 1 || line.Quantity > model.MaxQuantity {
			return apperror.InvalidInput("items[%d]: quantity must be between 1 and %d", i, model.MaxQuantity)
		}
		if line.Discount.IsNegative() {
			return apperror.InvalidInput("items[%d]: discount must not be negative", i)
		}
		if !model.ValidMoney(line.Discount) {
			return apperror.InvalidInput("items[%d]: discount must have at most 2 decimal places", i)
		}
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
