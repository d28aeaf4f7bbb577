package services

import (
	"context"

	"github.com/SscSPs/unified_pay/internal/core/domain"
)

// EventPublisher delivers transaction lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.TransactionEvent) error
	Close() error
}
