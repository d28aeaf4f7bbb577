package events

import (
	"context"
	"log/slog"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
)

// LogPublisher writes events to the structured log. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger.With(slog.String("component", "event_log"))}
}

var _ portssvc.EventPublisher = (*LogPublisher)(nil)

func (p *LogPublisher) Publish(ctx context.Context, event domain.TransactionEvent) error {
	txn := event.Transaction
	attrs := []any{
		slog.String("event_type", string(event.Type)),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("status", string(txn.Status)),
		slog.String("rail", string(txn.Rail)),
		slog.String("amount", txn.Amount.String()),
	}
	if txn.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", txn.FailureReason))
	}
	p.logger.InfoContext(ctx, "Transaction event", attrs...)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
