package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rent-home/service-matching/internal/application"
	"github.com/rent-home/service-matching/internal/contract"
	"github.com/rent-home/service-matching/internal/platform/domain"
	"github.com/rent-home/service-matching/internal/platform/kafka"
)

// ApartmentImporter upserts one apartment from the import stream.
type ApartmentImporter interface {
	ImportApartment(ctx context.Context, payload contract.ApartmentPayload) (*application.ApartmentDTO, error)
}

// CatalogImportConsumer listens to catalog import events and upserts apartments.
type CatalogImportConsumer struct {
	consumer *kafka.Consumer
	importer ApartmentImporter
	logger   *zap.Logger
}

// NewCatalogImportConsumer creates a new CatalogImportConsumer.
func NewCatalogImportConsumer(
	brokers []string,
	groupID string,
	importer ApartmentImporter,
	logger *zap.Logger,
) *CatalogImportConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contract.TopicCatalogImports, logger)
	return &CatalogImportConsumer{
		consumer: consumer,
		importer: importer,
		logger:   logger,
	}
}

// Start begins consuming import events. This blocks until the context is cancelled.
func (c *CatalogImportConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogImportConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogImportConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from import topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contract.ApartmentImported:
		return c.handleApartmentImported(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled catalog event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CatalogImportConsumer) handleApartmentImported(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt contract.ApartmentImportedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse ApartmentImportedEvent data",
			zap.Error(err),
		)
		return nil
	}

	dto, err := c.importer.ImportApartment(ctx, evt.Apartment)
	if err != nil {
		if domain.IsKind(err, domain.KindValidation) {
			c.logger.Warn("rejected invalid imported apartment",
				zap.String("apartment_id", evt.Apartment.ID),
				zap.String("source", evt.Source),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to import apartment",
			zap.String("apartment_id", evt.Apartment.ID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("apartment imported from stream",
		zap.String("apartment_id", dto.ID),
		zap.String("source", evt.Source),
	)
	return nil
}
