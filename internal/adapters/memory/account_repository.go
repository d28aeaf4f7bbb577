package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// AccountRepository keeps accounts in process memory.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewAccountRepository creates an empty in-memory account store.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]domain.Account)}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return &account, nil
}

// ListAccounts returns accounts ordered by creation time, then id.
func (r *AccountRepository) ListAccounts(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *AccountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.AccountID]; exists {
		return fmt.Errorf("account %s: %w", account.AccountID, apperrors.ErrDuplicate)
	}
	r.accounts[account.AccountID] = account
	return nil
}

func (r *AccountRepository) DeleteAccount(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[accountID]; !ok {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	delete(r.accounts, accountID)
	return nil
}

func (r *AccountRepository) UpdateAccountBalance(_ context.Context, accountID string, balance decimal.Decimal, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	account.Balance = balance
	account.LastUpdatedAt = updatedAt
	r.accounts[accountID] = account
	return nil
}

func (r *AccountRepository) ApplyTransfer(_ context.Context, fromAccountID string, fromBalance decimal.Decimal, toAccountID string, toBalance decimal.Decimal, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.accounts[fromAccountID]
	if !ok {
		return fmt.Errorf("account %s: %w", fromAccountID, apperrors.ErrNotFound)
	}
	to, ok := r.accounts[toAccountID]
	if !ok {
		return fmt.Errorf("account %s: %w", toAccountID, apperrors.ErrNotFound)
	}

	from.Balance, from.LastUpdatedAt = fromBalance, updatedAt
	to.Balance, to.LastUpdatedAt = toBalance, updatedAt
	r.accounts[fromAccountID] = from
	r.accounts[toAccountID] = to
	return nil
}
