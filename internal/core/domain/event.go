package domain

import "time"

// TransactionEventType names a lifecycle change.
type TransactionEventType string

const (
	EventInitiated TransactionEventType = "transaction.initiated"
	EventCompleted TransactionEventType = "transaction.completed"
	EventFailed    TransactionEventType = "transaction.failed"
)

// TransactionEvent is emitted after every state change of a transaction.
type TransactionEvent struct {
	Type        TransactionEventType `json:"type"`
	Transaction Transaction          `json:"transaction"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

// EventForStatus returns the event type matching a transaction status.
func EventForStatus(status TransactionStatus) TransactionEventType {
	switch status {
	case StatusCompleted:
		return EventCompleted
	case StatusFailed:
		return EventFailed
	default:
		return EventInitiated
	}
}
