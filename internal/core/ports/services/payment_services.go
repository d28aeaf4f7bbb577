package services

import (
	"context"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	"github.com/SscSPs/unified_pay/internal/dto"
)

// PaymentInitiatorSvc creates transactions.
type PaymentInitiatorSvc interface {
	// Initiate validates, converts and routes a payment and records it as INITIATED.
	// No balance changes until Settle.
	Initiate(ctx context.Context, req dto.InitiatePaymentRequest) (*domain.Transaction, error)

	// ChoosePaymentMethod previews the rail Initiate would pick for pctx.
	ChoosePaymentMethod(pctx domain.PaymentContext) domain.PaymentMethod

	// Preview converts the requested amount like Initiate does and explains every rail's score.
	Preview(ctx context.Context, req dto.RecommendRailRequest) (*dto.RailRecommendationResponse, error)
}

// PaymentSettlerSvc resolves transactions to a terminal status.
type PaymentSettlerSvc interface {
	// Settle returns the transaction in its terminal state. Business failures are recorded
	// on the transaction (FAILED + reason) and are not returned as errors.
	Settle(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// Fail marks an INITIATED transaction FAILED without touching balances.
	Fail(ctx context.Context, transactionID string, reason string) (*domain.Transaction, error)
}

// PaymentReaderSvc reads the transaction log.
type PaymentReaderSvc interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// PaymentSvcFacade combines all payment interfaces.
type PaymentSvcFacade interface {
	PaymentInitiatorSvc
	PaymentSettlerSvc
	PaymentReaderSvc
}
