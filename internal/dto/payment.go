package dto

import (
	"time"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest defines the data needed to start a payment.
// Nil hints fall back to the orchestrator defaults.
type InitiatePaymentRequest struct {
	SenderAccountID       string            `json:"senderAccountID" binding:"required"`
	ReceiverAccountID     string            `json:"receiverAccountID" binding:"required"`
	Amount                decimal.Decimal   `json:"amount"`
	Currency              string            `json:"currency" binding:"omitempty,currency_code"` // empty means reference currency
	Rail                  *string           `json:"rail" binding:"omitempty,rail"`              // explicit override, skips routing
	IsDomestic            *bool             `json:"isDomestic"`
	NeedInstant           *bool             `json:"needInstant"`
	PreferredMethod       *string           `json:"preferredMethod" binding:"omitempty,rail"`
	MerchantPrefersLowFee *bool             `json:"merchantPrefersLowFee"`
	AllowCrypto           *bool             `json:"allowCrypto"`
	Metadata              map[string]string `json:"metadata"`
}

// FailPaymentRequest is the operator input for marking a payment failed.
type FailPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransactionResponse is the serialized transaction record.
type TransactionResponse struct {
	TransactionID     string                   `json:"transaction_id"`
	SenderAccountID   string                   `json:"sender_account_id"`
	ReceiverAccountID string                   `json:"receiver_account_id"`
	Amount            decimal.Decimal          `json:"amount"`
	OriginalAmount    decimal.Decimal          `json:"original_amount"`
	OriginalCurrency  string                   `json:"original_currency"`
	FXRate            *decimal.Decimal         `json:"fx_rate,omitempty"`
	Rail              domain.PaymentMethod     `json:"rail"`
	Instant           bool                     `json:"instant"`
	Status            domain.TransactionStatus `json:"status"`
	FailureReason     string                   `json:"failure_reason,omitempty"`
	Metadata          map[string]string        `json:"metadata,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	SettledAt         *time.Time               `json:"settled_at,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:     txn.TransactionID,
		SenderAccountID:   txn.SenderAccountID,
		ReceiverAccountID: txn.ReceiverAccountID,
		Amount:            txn.Amount,
		OriginalAmount:    txn.OriginalAmount,
		OriginalCurrency:  txn.OriginalCurrency,
		FXRate:            txn.FXRate,
		Rail:              txn.Rail,
		Instant:           txn.Instant,
		Status:            txn.Status,
		FailureReason:     txn.FailureReason,
		Metadata:          txn.Metadata,
		CreatedAt:         txn.CreatedAt,
		SettledAt:         txn.SettledAt,
	}
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToListTransactionsResponse converts a page of domain transactions.
func ToListTransactionsResponse(txns []domain.Transaction, nextToken *string) ListTransactionsResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return ListTransactionsResponse{Transactions: out, NextToken: nextToken}
}
