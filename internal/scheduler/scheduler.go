package scheduler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/period"
	"github.com/fekuna/omnipos-sales-service/internal/sale"
	"github.com/fekuna/omnipos-sales-service/internal/sale/dto"
	"github.com/fekuna/omnipos-sales-service/internal/tenant"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = 2 * time.Minute

// Scheduler runs the nightly per-tenant sales summary.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	tenants   tenant.Repository
	settings  tenant.Provider
	sales     sale.UseCase
	publisher sale.EventPublisher
	now       func() time.Time
	logger    logger.ZapLogger
}

// NewScheduler builds a scheduler for the standard 5-field cron spec. publisher may be nil.
func NewScheduler(spec string, tenants tenant.Repository, settings tenant.Provider, sales sale.UseCase, publisher sale.EventPublisher, log logger.ZapLogger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		spec:      spec,
		tenants:   tenants,
		settings:  settings,
		sales:     sales,
		publisher: publisher,
		now:       time.Now,
		logger:    log,
	}
}

func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("daily_summary", s.spec))
	if _, err := s.cron.AddFunc(s.spec, s.publishDailySummaries); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishDailySummaries() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	n, err := s.RunDailySummary(ctx, s.now())
	if err != nil {
		s.logger.Error("daily summary run failed", zap.Int("published", n), zap.Error(err))
		return
	}
	s.logger.Info("daily summary run finished", zap.Int("published", n))
}

// RunDailySummary summarizes the day before at, in each tenant's timezone, and publishes one event per tenant.
// A failing tenant is logged and skipped.
func (s *Scheduler) RunDailySummary(ctx context.Context, at time.Time) (int, error) {
	tenants, err := s.tenants.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, t := range tenants {
		settings, err := s.settings.Settings(ctx, t.ID)
		if err != nil {
			s.logger.Error("failed to load tenant settings", zap.String("tenant_id", t.ID), zap.Error(err))
			continue
		}

		start, end := period.DayBounds(at.In(settings.Location).AddDate(0, 0, -1), settings.Location)
		last := end.Add(-time.Nanosecond)
		report, err := s.sales.SalesReport(ctx, &dto.SaleFilters{
			MerchantID: t.ID,
			StartDate:  &start,
			EndDate:    &last,
		})
		if err != nil {
			s.logger.Error("failed to build daily summary", zap.String("tenant_id", t.ID), zap.Error(err))
			continue
		}

		event := dto.DailySummaryEvent{
			MerchantID: t.ID,
			Day:        start.Format("2006-01-02"),
			Summary:    report.Summary,
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, t.ID, sale.EventDailySummary, event); err != nil {
				s.logger.Error("failed to publish daily summary", zap.String("tenant_id", t.ID), zap.Error(err))
				continue
			}
		}
		s.logger.Info("daily summary",
			zap.String("tenant_id", t.ID),
			zap.String("day", event.Day),
			zap.Int("sales", event.Summary.TotalSales),
			zap.String("revenue", event.Summary.TotalRevenue.String()),
		)
		published++
	}
	return published, nil
}
