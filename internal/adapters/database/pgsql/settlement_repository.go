package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxSettlementRepository struct {
	BaseRepository
}

func newPgxSettlementRepository(pool *pgxpool.Pool) *PgxSettlementRepository {
	return &PgxSettlementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

// ApplySettlement writes both balances and the transaction row inside one database transaction.
func (r *PgxSettlementRepository) ApplySettlement(ctx context.Context, fromAccountID string, fromBalance decimal.Decimal, toAccountID string, toBalance decimal.Decimal, updatedAt time.Time, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	if err := updateBalance(ctx, tx, fromAccountID, fromBalance, updatedAt); err != nil {
		return err
	}
	if err := updateBalance(ctx, tx, toAccountID, toBalance, updatedAt); err != nil {
		return err
	}
	if err := upsertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}
