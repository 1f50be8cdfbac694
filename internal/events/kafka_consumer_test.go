package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rent-home/service-matching/internal/application"
	"github.com/rent-home/service-matching/internal/contract"
	"github.com/rent-home/service-matching/internal/platform/domain"
	"github.com/rent-home/service-matching/internal/platform/kafka"
)

type mockImporter struct {
	mock.Mock
}

func (m *mockImporter) ImportApartment(ctx context.Context, payload contract.ApartmentPayload) (*application.ApartmentDTO, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.ApartmentDTO), args.Error(1)
}

func importMessage(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("catalog-feed", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Topic: contract.TopicCatalogImports, Value: raw}
}

func TestCatalogImportConsumer_HandleMessage(t *testing.T) {
	payload := contract.ApartmentPayload{ID: "APT0042", Name: "导入公寓", MinPrice: 2000, MaxPrice: 2600, Address: "丰台区某路"}

	importer := &mockImporter{}
	importer.On("ImportApartment", mock.Anything, payload).Return(&application.ApartmentDTO{ID: "APT0042"}, nil)

	c := &CatalogImportConsumer{importer: importer, logger: zaptest.NewLogger(t)}
	err := c.handleMessage(context.Background(), importMessage(t, contract.ApartmentImported, contract.ApartmentImportedEvent{
		Apartment: payload,
		Source:    "crawler",
	}))

	require.NoError(t, err)
	importer.AssertExpectations(t)
}

func TestCatalogImportConsumer_HandleMessage_Skips(t *testing.T) {
	tests := []struct {
		name string
		msg  func(t *testing.T) kafkago.Message
	}{
		{
			name: "malformed envelope",
			msg:  func(*testing.T) kafkago.Message { return kafkago.Message{Value: []byte("{not json")} },
		},
		{
			name: "unhandled type",
			msg: func(t *testing.T) kafkago.Message {
				return importMessage(t, contract.ApartmentDeleted, contract.ApartmentDeletedEvent{ApartmentID: "APT0001"})
			},
		},
		{
			name: "malformed data",
			msg:  func(t *testing.T) kafkago.Message { return importMessage(t, contract.ApartmentImported, "just a string") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importer := &mockImporter{}
			c := &CatalogImportConsumer{importer: importer, logger: zaptest.NewLogger(t)}

			assert.NoError(t, c.handleMessage(context.Background(), tt.msg(t)))
			importer.AssertNotCalled(t, "ImportApartment", mock.Anything, mock.Anything)
		})
	}
}

func TestCatalogImportConsumer_HandleMessage_ImportErrors(t *testing.T) {
	msg := importMessage(t, contract.ApartmentImported, contract.ApartmentImportedEvent{
		Apartment: contract.ApartmentPayload{ID: "APT0001", Name: "x", Address: "y"},
	})

	invalid := &mockImporter{}
	invalid.On("ImportApartment", mock.Anything, mock.Anything).Return(nil, domain.NewValidationError("invalid apartment ID"))
	c := &CatalogImportConsumer{importer: invalid, logger: zaptest.NewLogger(t)}
	assert.NoError(t, c.handleMessage(context.Background(), msg))

	failing := &mockImporter{}
	failing.On("ImportApartment", mock.Anything, mock.Anything).Return(nil, errors.New("database is down"))
	c = &CatalogImportConsumer{importer: failing, logger: zaptest.NewLogger(t)}
	assert.Error(t, c.handleMessage(context.Background(), msg))
}
