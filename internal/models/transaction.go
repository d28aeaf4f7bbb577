package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persisted form of a payment record.
type Transaction struct {
	TransactionID     string              `db:"transaction_id"`
	SenderAccountID   string              `db:"sender_account_id"`
	ReceiverAccountID string              `db:"receiver_account_id"`
	Amount            decimal.Decimal     `db:"amount"`
	OriginalAmount    decimal.Decimal     `db:"original_amount"`
	OriginalCurrency  string              `db:"original_currency"`
	FXRate            decimal.NullDecimal `db:"fx_rate"` // NULL when no conversion happened
	Rail              string              `db:"rail"`
	Instant           bool                `db:"instant"`
	Status            string              `db:"status"`
	FailureReason     *string             `db:"failure_reason"` // NULL unless FAILED
	Metadata          map[string]string   `db:"metadata"`
	CreatedAt         time.Time           `db:"created_at"`
	SettledAt         *time.Time          `db:"settled_at"`
}
