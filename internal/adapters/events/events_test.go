package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/SscSPs/unified_pay/internal/adapters/events"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() domain.TransactionEvent {
	return domain.TransactionEvent{
		Type: domain.EventFailed,
		Transaction: domain.Transaction{
			TransactionID:     "tx-1",
			SenderAccountID:   "a",
			ReceiverAccountID: "b",
			Amount:            decimal.NewFromInt(1100),
			OriginalAmount:    decimal.NewFromInt(1100),
			OriginalCurrency:  "INR",
			Rail:              domain.UPI,
			Status:            domain.StatusFailed,
			FailureReason:     "insufficient balance",
		},
		OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var decoded map[string]any
		if err := json.Unmarshal(val, &decoded); err != nil {
			return err
		}
		if decoded["type"] != string(domain.EventFailed) {
			return errors.New("unexpected event type")
		}
		txn, ok := decoded["transaction"].(map[string]any)
		if !ok || txn["transaction_id"] != "tx-1" || txn["failure_reason"] != "insufficient balance" {
			return errors.New("unexpected transaction payload")
		}
		return nil
	})

	pub := events.NewKafkaPublisherWithProducer(producer, "payments.transactions", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := events.NewKafkaPublisherWithProducer(producer, "payments.transactions", nil)
	err := pub.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisher_CanceledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := events.NewKafkaPublisherWithProducer(producer, "payments.transactions", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, sampleEvent()), context.Canceled)
	require.NoError(t, pub.Close())
}

func TestNewProducerConfig_IsValid(t *testing.T) {
	cfg := events.NewProducerConfig()
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Producer.Return.Successes)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := events.NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), `"event_type":"transaction.failed"`)
	assert.Contains(t, buf.String(), `"failure_reason":"insufficient balance"`)
	assert.NoError(t, pub.Close())
}
