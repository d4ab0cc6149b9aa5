package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/reconcile"
	"github.com/fekuna/omnipos-sales-service/internal/reconcile/dto"
	"github.com/fekuna/omnipos-sales-service/pkg/broker"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventSyncRequested = "inventory.sync_requested"

// MessageReader is the consumer side of a Kafka topic.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// SyncListener replays offline batches queued on the sync topic.
type SyncListener struct {
	consumer MessageReader
	uc       reconcile.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewSyncListener(consumer MessageReader, uc reconcile.UseCase, logger logger.ZapLogger) *SyncListener {
	return &SyncListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *SyncListener) Start(ctx context.Context) {
	l.logger.Info("Starting Sync Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Sync Kafka Listener")
			return
		default:
			msg, err := l.consumer.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(l.backoff)
				continue
			}
			l.processMessage(ctx, msg.Value)
			if err := l.consumer.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				l.logger.Error("Failed to commit kafka message", zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
	}
}

func (l *SyncListener) processMessage(ctx context.Context, value []byte) {
	var event broker.Event
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if event.EventType != EventSyncRequested {
		return
	}

	var batch dto.SyncBatchMessage
	if err := json.Unmarshal(event.Payload, &batch); err != nil {
		l.logger.Error("Failed to unmarshal sync batch", zap.String("event_id", event.EventID), zap.Error(err))
		return
	}
	if batch.TenantID == "" {
		l.logger.Warn("Dropping sync batch without tenant", zap.String("event_id", event.EventID))
		return
	}

	l.logger.Info("Processing queued sync batch",
		zap.String("event_id", event.EventID),
		zap.String("tenant_id", batch.TenantID),
		zap.Int("products", len(batch.Products)),
	)

	results, err := l.uc.BatchSync(ctx, batch.TenantID, batch.Products)
	if err != nil {
		l.logger.Error("Failed to run queued sync batch", zap.String("event_id", event.EventID), zap.Error(err))
		return
	}
	for _, r := range results {
		if r.Status == dto.StatusFailed {
			l.logger.Warn("Queued sync item failed",
				zap.String("tenant_id", batch.TenantID),
				zap.String("sku", r.SKU),
				zap.String("error", r.Error),
			)
		}
	}
}
