package services

import (
	"context"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerAccountSvc manages the accounts whose balances the ledger owns.
type LedgerAccountSvc interface {
	OpenAccount(ctx context.Context, ownerID string, initialBalance decimal.Decimal) (*domain.Account, error)
	CloseAccount(ctx context.Context, accountID string) error
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// LedgerPostingSvc is the only way balances change.
type LedgerPostingSvc interface {
	// GetBalance returns apperrors.ErrAccountNotFound for an unknown account, never zero.
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	Debit(ctx context.Context, accountID string, amount decimal.Decimal) error
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) error
	// Transfer debits the sender and credits the receiver as one fenced operation.
	Transfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) error
	// SettleTransfer moves txn.Amount from sender to receiver and stores txn, which must
	// already be COMPLETED, in the same atomic write as the balances.
	SettleTransfer(ctx context.Context, txn domain.Transaction) error
}

// TransactionRecorderSvc stores the flat transaction log.
type TransactionRecorderSvc interface {
	RecordTransaction(ctx context.Context, txn domain.Transaction) error
	// GetTransaction reports found=false for an unknown id; err is reserved for storage failures.
	GetTransaction(ctx context.Context, transactionID string) (txn domain.Transaction, found bool, err error)
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// LedgerSvcFacade combines all ledger interfaces.
type LedgerSvcFacade interface {
	LedgerAccountSvc
	LedgerPostingSvc
	TransactionRecorderSvc
}
