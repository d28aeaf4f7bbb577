package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// SettlementRepository writes settlement outcomes across the account and
// transaction stores it was built over.
type SettlementRepository struct {
	accounts     *AccountRepository
	transactions *TransactionRepository
}

// NewSettlementRepository creates a settlement writer over the given stores.
func NewSettlementRepository(accounts *AccountRepository, transactions *TransactionRepository) *SettlementRepository {
	return &SettlementRepository{accounts: accounts, transactions: transactions}
}

var _ portsrepo.SettlementRepositoryFacade = (*SettlementRepository)(nil)

// ApplySettlement holds both store locks, accounts first, for the whole write.
func (r *SettlementRepository) ApplySettlement(_ context.Context, fromAccountID string, fromBalance decimal.Decimal, toAccountID string, toBalance decimal.Decimal, updatedAt time.Time, txn domain.Transaction) error {
	r.accounts.mu.Lock()
	defer r.accounts.mu.Unlock()
	r.transactions.mu.Lock()
	defer r.transactions.mu.Unlock()

	from, ok := r.accounts.accounts[fromAccountID]
	if !ok {
		return fmt.Errorf("account %s: %w", fromAccountID, apperrors.ErrNotFound)
	}
	to, ok := r.accounts.accounts[toAccountID]
	if !ok {
		return fmt.Errorf("account %s: %w", toAccountID, apperrors.ErrNotFound)
	}

	from.Balance, from.LastUpdatedAt = fromBalance, updatedAt
	to.Balance, to.LastUpdatedAt = toBalance, updatedAt
	r.accounts.accounts[fromAccountID] = from
	r.accounts.accounts[toAccountID] = to
	r.transactions.transactions[txn.TransactionID] = txn.Clone()
	return nil
}
