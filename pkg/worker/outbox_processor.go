package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	"github.com/rakibul/healthdir-api/internal/service/notification"
	"github.com/rakibul/healthdir-api/pkg/logger"
	"github.com/rakibul/healthdir-api/pkg/messaging"
	"github.com/rakibul/healthdir-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// OutboxProcessor drains pending outbox events and performs the best-effort
// side effects decoupled from the state transitions that produced them:
// the verification email and an in-app event on the broker.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	notifs  notification.Service
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	notifs notification.Service,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}

	return &OutboxProcessor{
		repo:    repo,
		notifs:  notifs,
		broker:  broker,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("outbox processor started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox processor stopped")
			return
		case <-ticker.C:
			p.processBatch(ctx)
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) {
	events, err := p.repo.GetPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error(err, "failed to fetch pending outbox events")
		return
	}

	for _, event := range events {
		start := time.Now()
		if err := p.processEvent(ctx, event); err != nil {
			p.metrics.OutboxEventsFailed.Inc()
			p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
			p.logger.Error(err, "failed to process outbox event",
				"event_id", event.ID.String(), "event_type", event.EventType)

			if err := p.repo.MarkFailed(ctx, event.ID, event.RetryCount+1); err != nil {
				p.logger.Error(err, "failed to mark outbox event failed", "event_id", event.ID.String())
			}
			continue
		}

		p.metrics.OutboxEventsProcessed.Inc()
		p.metrics.OutboxProcessingLatency.Observe(time.Since(start).Seconds())

		if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
			p.logger.Error(err, "failed to mark outbox event processed", "event_id", event.ID.String())
		}
	}
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	switch event.EventType {
	case model.EventDoctorApproved, model.EventDoctorRejected:
		var payload model.DoctorVerificationEvent
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode verification event: %w", err)
		}

		if err := p.notifs.SendVerificationResult(ctx, &payload); err != nil {
			return err
		}

		// In-app event for connected dashboards; losing it is acceptable.
		if err := p.broker.Publish(ctx, "notifications", event); err != nil {
			p.logger.Warn("failed to publish in-app notification", "event_id", event.ID.String())
		}
		return nil
	case model.EventAppointmentStatusChanged:
		// No email for lifecycle moves, only the in-app stream.
		if err := p.broker.Publish(ctx, "notifications", event); err != nil {
			return fmt.Errorf("failed to publish appointment status event: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported event type: %s", event.EventType)
	}
}
