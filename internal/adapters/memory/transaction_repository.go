package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
	"github.com/SscSPs/unified_pay/internal/utils/pagination"
)

// TransactionRepository keeps the transaction log in process memory.
// Records are stored and returned as deep copies.
type TransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
}

// NewTransactionRepository creates an empty in-memory transaction log.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{transactions: make(map[string]domain.Transaction)}
}

var _ portsrepo.TransactionRepositoryFacade = (*TransactionRepository)(nil)

func (r *TransactionRepository) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, ok := r.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	out := txn.Clone()
	return &out, nil
}

func (r *TransactionRepository) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transactions[txn.TransactionID] = txn.Clone()
	return nil
}

func (r *TransactionRepository) ListTransactions(_ context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeCursorToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	r.mu.RLock()
	all := make([]domain.Transaction, 0, len(r.transactions))
	for _, txn := range r.transactions {
		if cursor != nil && !cursor.After(txn.CreatedAt, txn.TransactionID) {
			continue
		}
		all = append(all, txn.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].TransactionID > all[j].TransactionID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if limit <= 0 || len(all) <= limit {
		return all, nil, nil
	}
	page := all[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeCursorToken(last.CreatedAt, last.TransactionID)
	return page, &token, nil
}
