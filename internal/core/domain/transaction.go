package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a payment.
type TransactionStatus string

const (
	StatusInitiated TransactionStatus = "INITIATED"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// IsTerminal reports whether no further transitions are allowed.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Transaction is a payment between two accounts. Accounts are referenced by id only
// and are resolved again at settlement time.
type Transaction struct {
	TransactionID     string            `json:"transaction_id"`
	SenderAccountID   string            `json:"sender_account_id"`
	ReceiverAccountID string            `json:"receiver_account_id"`
	Amount            decimal.Decimal   `json:"amount"` // reference currency
	OriginalAmount    decimal.Decimal   `json:"original_amount"`
	OriginalCurrency  string            `json:"original_currency"`
	FXRate            *decimal.Decimal  `json:"fx_rate,omitempty"`
	Rail              PaymentMethod     `json:"rail"`
	Instant           bool              `json:"instant"`
	Status            TransactionStatus `json:"status"`
	FailureReason     string            `json:"failure_reason,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	SettledAt         *time.Time        `json:"settled_at,omitempty"`
}

// Complete moves an initiated transaction to COMPLETED.
func (t *Transaction) Complete(at time.Time) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrAlreadyFinalized, t.TransactionID, t.Status)
	}
	t.Status = StatusCompleted
	t.FailureReason = ""
	t.SettledAt = &at
	return nil
}

// Fail moves an initiated transaction to FAILED with the given reason.
func (t *Transaction) Fail(reason string, at time.Time) error {
	if t.Status.IsTerminal() {
		return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrAlreadyFinalized, t.TransactionID, t.Status)
	}
	t.Status = StatusFailed
	t.FailureReason = reason
	t.SettledAt = &at
	return nil
}

// Clone returns a deep copy so stored records cannot be mutated through a returned value.
func (t Transaction) Clone() Transaction {
	out := t
	if t.FXRate != nil {
		rate := *t.FXRate
		out.FXRate = &rate
	}
	if t.SettledAt != nil {
		at := *t.SettledAt
		out.SettledAt = &at
	}
	if t.Metadata != nil {
		out.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// IsConverted reports whether the amount was converted from a foreign currency.
func (t Transaction) IsConverted() bool {
	return t.FXRate != nil && t.OriginalCurrency != ""
}
