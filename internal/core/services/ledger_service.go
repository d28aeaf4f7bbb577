package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ledgerService owns account balances and the transaction log.
// Every balance read-then-write happens under the account's lock.
type ledgerService struct {
	BaseService
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionRepositoryFacade
	settlementRepo  portsrepo.SettlementRepositoryFacade
	locks           *keyedLocks
	now             func() time.Time
}

// LedgerOption is a functional option for configuring the ledger
type LedgerOption func(*ledgerService)

// WithLedgerClock overrides the clock used for audit timestamps.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new ledger backed by the given repositories.
func NewLedgerService(
	accountRepo portsrepo.AccountRepositoryFacade,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	settlementRepo portsrepo.SettlementRepositoryFacade,
	options ...LedgerOption,
) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		settlementRepo:  settlementRepo,
		locks:           newKeyedLocks(),
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) OpenAccount(ctx context.Context, ownerID string, initialBalance decimal.Decimal) (*domain.Account, error) {
	if ownerID == "" {
		return nil, apperrors.NewValidationError("ownerID is required")
	}
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance %s is negative", apperrors.ErrInvalidAmount, initialBalance)
	}

	now := s.now()
	account := domain.Account{
		AccountID: uuid.NewString(),
		OwnerID:   ownerID,
		Balance:   initialBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("owner_id", ownerID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account opened",
		slog.String("account_id", account.AccountID),
		slog.String("owner_id", ownerID),
		slog.String("balance", initialBalance.String()))
	return &account, nil
}

func (s *ledgerService) CloseAccount(ctx context.Context, accountID string) error {
	unlock := s.locks.lock(accountID)
	defer unlock()

	if err := s.accountRepo.DeleteAccount(ctx, accountID); err != nil {
		return s.accountError(accountID, err)
	}
	s.LogInfo(ctx, "Account closed", slog.String("account_id", accountID))
	return nil
}

func (s *ledgerService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, s.accountError(accountID, err)
	}
	return account, nil
}

func (s *ledgerService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (s *ledgerService) Debit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: debit of %s", apperrors.ErrInvalidAmount, amount)
	}

	unlock := s.locks.lock(accountID)
	defer unlock()

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if amount.GreaterThan(account.Balance) {
		return insufficientFunds(account, amount)
	}
	return s.persistBalance(ctx, accountID, account.Balance.Sub(amount))
}

func (s *ledgerService) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: credit of %s", apperrors.ErrInvalidAmount, amount)
	}

	unlock := s.locks.lock(accountID)
	defer unlock()

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	return s.persistBalance(ctx, accountID, account.Balance.Add(amount))
}

func (s *ledgerService) Transfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) error {
	if err := validateTransfer(fromAccountID, toAccountID, amount); err != nil {
		return err
	}

	unlock := s.locks.lock(fromAccountID, toAccountID)
	defer unlock()

	fromBalance, toBalance, err := s.balancesAfter(ctx, fromAccountID, toAccountID, amount)
	if err != nil {
		return err
	}

	if err := s.accountRepo.ApplyTransfer(ctx, fromAccountID, fromBalance, toAccountID, toBalance, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to apply transfer",
			slog.String("from_account_id", fromAccountID),
			slog.String("to_account_id", toAccountID))
		return fmt.Errorf("failed to apply transfer: %w", err)
	}

	s.LogDebug(ctx, "Transfer applied",
		slog.String("from_account_id", fromAccountID),
		slog.String("to_account_id", toAccountID),
		slog.String("amount", amount.String()))
	return nil
}

func (s *ledgerService) SettleTransfer(ctx context.Context, txn domain.Transaction) error {
	if txn.TransactionID == "" {
		return apperrors.NewValidationError("transaction id is required")
	}
	if txn.Status != domain.StatusCompleted {
		return apperrors.NewValidationError(fmt.Sprintf("transaction %s is %s, settlement writes require %s",
			txn.TransactionID, txn.Status, domain.StatusCompleted))
	}
	if err := validateTransfer(txn.SenderAccountID, txn.ReceiverAccountID, txn.Amount); err != nil {
		return err
	}

	unlock := s.locks.lock(txn.SenderAccountID, txn.ReceiverAccountID)
	defer unlock()

	fromBalance, toBalance, err := s.balancesAfter(ctx, txn.SenderAccountID, txn.ReceiverAccountID, txn.Amount)
	if err != nil {
		return err
	}

	if err := s.settlementRepo.ApplySettlement(ctx,
		txn.SenderAccountID, fromBalance,
		txn.ReceiverAccountID, toBalance,
		s.now(), txn.Clone(),
	); err != nil {
		s.LogError(ctx, err, "Failed to apply settlement", slog.String("transaction_id", txn.TransactionID))
		return fmt.Errorf("failed to apply settlement of %s: %w", txn.TransactionID, err)
	}

	s.LogDebug(ctx, "Settlement applied",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("amount", txn.Amount.String()))
	return nil
}

// balancesAfter reads both accounts and computes their balances after moving amount.
// Callers hold both account locks.
func (s *ledgerService) balancesAfter(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	from, err := s.GetAccount(ctx, fromAccountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	to, err := s.GetAccount(ctx, toAccountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if amount.GreaterThan(from.Balance) {
		return decimal.Zero, decimal.Zero, insufficientFunds(from, amount)
	}
	return from.Balance.Sub(amount), to.Balance.Add(amount), nil
}

func validateTransfer(fromAccountID, toAccountID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: transfer of %s", apperrors.ErrInvalidAmount, amount)
	}
	if fromAccountID == toAccountID {
		return fmt.Errorf("%w: %s", apperrors.ErrSameAccount, fromAccountID)
	}
	return nil
}

func (s *ledgerService) RecordTransaction(ctx context.Context, txn domain.Transaction) error {
	if txn.TransactionID == "" {
		return apperrors.NewValidationError("transaction id is required")
	}
	if err := s.transactionRepo.SaveTransaction(ctx, txn.Clone()); err != nil {
		s.LogError(ctx, err, "Failed to record transaction", slog.String("transaction_id", txn.TransactionID))
		return fmt.Errorf("failed to record transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string) (domain.Transaction, bool, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Transaction{}, false, nil
		}
		return domain.Transaction{}, false, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
	}
	return txn.Clone(), true, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	txns, nextToken, err := s.transactionRepo.ListTransactions(ctx, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.Int("limit", limit))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	resp := dto.ToListTransactionsResponse(txns, nextToken)
	return &resp, nil
}

func (s *ledgerService) persistBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	if err := s.accountRepo.UpdateAccountBalance(ctx, accountID, balance, s.now()); err != nil {
		s.LogError(ctx, err, "Failed to update balance", slog.String("account_id", accountID))
		return s.accountError(accountID, err)
	}
	return nil
}

// accountError translates repository not-found into the ledger taxonomy.
func (s *ledgerService) accountError(accountID string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return fmt.Errorf("account %s: %w", accountID, err)
}

func insufficientFunds(account *domain.Account, amount decimal.Decimal) error {
	return fmt.Errorf("%w: account %s has %s, needs %s",
		apperrors.ErrInsufficientFunds, account.AccountID, account.Balance, amount)
}
