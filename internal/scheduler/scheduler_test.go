package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/fekuna/omnipos-sales-service/internal/sale"
	"github.com/fekuna/omnipos-sales-service/internal/sale/dto"
	saleUseCase "github.com/fekuna/omnipos-sales-service/internal/sale/usecase"
	"github.com/fekuna/omnipos-sales-service/internal/storage/memory"
	"github.com/fekuna/omnipos-sales-service/internal/tenant"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/shopspring/decimal"
)

type capturePublisher struct {
	mu     sync.Mutex
	events map[string]dto.DailySummaryEvent
}

func (p *capturePublisher) Publish(_ context.Context, key, eventType string, payload interface{}) error {
	if eventType != sale.EventDailySummary {
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var ev dto.DailySummaryEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[key] = ev
	return nil
}

func TestRunDailySummary(t *testing.T) {
	store := memory.NewStore()
	store.PutTenant(model.Tenant{ID: "shop-1", TaxRate: decimal.Zero, Timezone: "UTC", IsActive: true})
	store.PutTenant(model.Tenant{ID: "shop-2", Timezone: "UTC", IsActive: true})
	store.PutTenant(model.Tenant{ID: "closed", Timezone: "UTC", IsActive: false})
	store.PutStockItem(model.StockItem{
		BaseModel:  model.BaseModel{ID: "p-1"},
		MerchantID: "shop-1", SKU: "A", Name: "A", Price: decimal.NewFromInt(8), Quantity: 10,
	})

	saleDay := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	settings := tenant.NewProvider(store.Tenants(), time.UTC)
	sales := saleUseCase.NewSaleUseCase(store.Sales(), settings, nil, nil, sale.Options{StoreTimeout: time.Second},
		func() time.Time { return saleDay }, logger.NewNop())
	for i := 0; i < 2; i++ {
		if _, err := sales.CreateSale(context.Background(), &dto.CreateSaleInput{
			MerchantID: "shop-1", CashierID: "c", PaymentMethod: model.PaymentMethodCash,
			Items: []dto.CartItemInput{{ProductID: "p-1", Quantity: 1}},
		}); err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
	}

	pub := &capturePublisher{events: map[string]dto.DailySummaryEvent{}}
	s := NewScheduler("5 0 * * *", store.Tenants(), settings, sales, pub, logger.NewNop())

	n, err := s.RunDailySummary(context.Background(), time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RunDailySummary: %v", err)
	}
	if n != 2 {
		t.Fatalf("published = %d, want 2", n)
	}

	ev := pub.events["shop-1"]
	if ev.Day != "2024-03-09" || ev.Summary.TotalSales != 2 || !ev.Summary.TotalRevenue.Equal(decimal.NewFromInt(16)) {
		t.Errorf("shop-1 event = %+v", ev)
	}
	if ev := pub.events["shop-2"]; ev.Summary.TotalSales != 0 {
		t.Errorf("shop-2 event = %+v", ev)
	}
	if _, ok := pub.events["closed"]; ok {
		t.Error("inactive tenant was summarized")
	}

	// The following day has no sales for anyone.
	n, _ = s.RunDailySummary(context.Background(), time.Date(2024, 3, 11, 0, 5, 0, 0, time.UTC))
	if n != 2 || pub.events["shop-1"].Summary.TotalSales != 0 {
		t.Errorf("next day = %d, %+v", n, pub.events["shop-1"])
	}
}

func TestStartRejectsBadCronExpression(t *testing.T) {
	store := memory.NewStore()
	s := NewScheduler("not a cron", store.Tenants(), tenant.NewProvider(store.Tenants(), time.UTC), nil, nil, logger.NewNop())
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected an error for an invalid cron expression")
	}
}
