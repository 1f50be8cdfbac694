package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/rent-home/service-matching/internal/platform/kafka"
)

const eventSource = "service-matching"

// EventPublisher sends CloudEvents. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error
}

// publishEvent is best effort: failures are logged and never fail the use case.
// A nil publisher disables events.
func publishEvent(ctx context.Context, producer EventPublisher, logger *zap.Logger, topic, eventType string, data interface{}) {
	if producer == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
