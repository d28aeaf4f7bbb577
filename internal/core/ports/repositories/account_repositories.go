package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID returns apperrors.ErrNotFound when the account does not exist.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount inserts a new account; an existing id yields apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount returns apperrors.ErrNotFound when the account does not exist.
	DeleteAccount(ctx context.Context, accountID string) error

	// UpdateAccountBalance overwrites the persisted balance of a single account.
	UpdateAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, updatedAt time.Time) error

	// ApplyTransfer persists the new balances of both accounts atomically: either both are written or neither.
	ApplyTransfer(ctx context.Context, fromAccountID string, fromBalance decimal.Decimal, toAccountID string, toBalance decimal.Decimal, updatedAt time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
