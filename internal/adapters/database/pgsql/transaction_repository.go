package pgsql

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
	"github.com/SscSPs/unified_pay/internal/models"
	"github.com/SscSPs/unified_pay/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, sender_account_id, receiver_account_id, amount, original_amount,
	original_currency, fx_rate, rail, instant, status, failure_reason, metadata, created_at, settled_at`

func toModelTransaction(d domain.Transaction) models.Transaction {
	m := models.Transaction{
		TransactionID:     d.TransactionID,
		SenderAccountID:   d.SenderAccountID,
		ReceiverAccountID: d.ReceiverAccountID,
		Amount:            d.Amount,
		OriginalAmount:    d.OriginalAmount,
		OriginalCurrency:  d.OriginalCurrency,
		Rail:              string(d.Rail),
		Instant:           d.Instant,
		Status:            string(d.Status),
		Metadata:          d.Metadata,
		CreatedAt:         d.CreatedAt,
		SettledAt:         d.SettledAt,
	}
	if d.FXRate != nil {
		m.FXRate = decimal.NewNullDecimal(*d.FXRate)
	}
	if d.FailureReason != "" {
		reason := d.FailureReason
		m.FailureReason = &reason
	}
	return m
}

func toDomainTransaction(m models.Transaction) domain.Transaction {
	d := domain.Transaction{
		TransactionID:     m.TransactionID,
		SenderAccountID:   m.SenderAccountID,
		ReceiverAccountID: m.ReceiverAccountID,
		Amount:            m.Amount,
		OriginalAmount:    m.OriginalAmount,
		OriginalCurrency:  m.OriginalCurrency,
		Rail:              domain.PaymentMethod(m.Rail),
		Instant:           m.Instant,
		Status:            domain.TransactionStatus(m.Status),
		Metadata:          m.Metadata,
		CreatedAt:         m.CreatedAt,
		SettledAt:         m.SettledAt,
	}
	if m.FXRate.Valid {
		rate := m.FXRate.Decimal
		d.FXRate = &rate
	}
	if m.FailureReason != nil {
		d.FailureReason = *m.FailureReason
	}
	return d
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.SenderAccountID,
		&m.ReceiverAccountID,
		&m.Amount,
		&m.OriginalAmount,
		&m.OriginalCurrency,
		&m.FXRate,
		&m.Rail,
		&m.Instant,
		&m.Status,
		&m.FailureReason,
		&m.Metadata,
		&m.CreatedAt,
		&m.SettledAt,
	)
	return m, err
}

// SaveTransaction upserts the record keyed by transaction_id.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return upsertTransaction(ctx, r.Pool, txn)
}

func upsertTransaction(ctx context.Context, db execer, txn domain.Transaction) error {
	m := toModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (transaction_id) DO UPDATE SET
			rail = EXCLUDED.rail,
			status = EXCLUDED.status,
			failure_reason = EXCLUDED.failure_reason,
			metadata = EXCLUDED.metadata,
			settled_at = EXCLUDED.settled_at;
	`
	_, err := db.Exec(ctx, query,
		m.TransactionID,
		m.SenderAccountID,
		m.ReceiverAccountID,
		m.Amount,
		m.OriginalAmount,
		m.OriginalCurrency,
		m.FXRate,
		m.Rail,
		m.Instant,
		m.Status,
		m.FailureReason,
		m.Metadata,
		m.CreatedAt,
		m.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction record by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}

	txn := toDomainTransaction(m)
	return &txn, nil
}

// ListTransactions pages through the log newest first with a keyset cursor.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := []any{limit + 1}
	cursorClause := ""
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeCursorToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(http.StatusBadRequest, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		}
		cursorClause = `WHERE (created_at, transaction_id) < ($2, $3)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions ` + cursorClause +
		` ORDER BY created_at DESC, transaction_id DESC LIMIT $1;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, toDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	// One extra row was fetched to learn whether another page exists.
	if len(txns) <= limit {
		return txns, nil, nil
	}
	txns = txns[:limit]
	last := txns[len(txns)-1]
	token := pagination.EncodeCursorToken(last.CreatedAt, last.TransactionID)
	return txns, &token, nil
}
