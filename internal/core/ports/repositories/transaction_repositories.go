package repositories

import (
	"context"

	"github.com/SscSPs/unified_pay/internal/core/domain"
)

// TransactionReader defines read operations for transaction records.
type TransactionReader interface {
	// FindTransactionByID returns apperrors.ErrNotFound when no record exists.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns records newest first using token-based pagination.
	// It returns the records, a token for the next page, and an error.
	ListTransactions(ctx context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for transaction records.
type TransactionWriter interface {
	// SaveTransaction inserts the record or replaces the stored record with the same id.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
