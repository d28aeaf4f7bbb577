package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, updatedAt time.Time) error {
	args := m.Called(ctx, accountID, balance, updatedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyTransfer(ctx context.Context, fromAccountID string, fromBalance decimal.Decimal, toAccountID string, toBalance decimal.Decimal, updatedAt time.Time) error {
	args := m.Called(ctx, fromAccountID, fromBalance, toAccountID, toBalance, updatedAt)
	return args.Error(0)
}

// MockTransactionRepository is a mock type for the TransactionRepositoryFacade interface
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var next *string
	if v := args.Get(1); v != nil {
		next = v.(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), next, args.Error(2)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// MockSettlementRepository is a mock type for the SettlementRepositoryFacade interface
type MockSettlementRepository struct {
	mock.Mock
}

var _ portsrepo.SettlementRepositoryFacade = (*MockSettlementRepository)(nil)

func (m *MockSettlementRepository) ApplySettlement(ctx context.Context, fromAccountID string, fromBalance decimal.Decimal, toAccountID string, toBalance decimal.Decimal, updatedAt time.Time, txn domain.Transaction) error {
	args := m.Called(ctx, fromAccountID, fromBalance, toAccountID, toBalance, updatedAt, txn)
	return args.Error(0)
}

// contextBoundTransactions fails every call once ctx is done, the way a database driver does.
type contextBoundTransactions struct {
	portsrepo.TransactionRepositoryFacade
}

func (r contextBoundTransactions) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.TransactionRepositoryFacade.FindTransactionByID(ctx, transactionID)
}

func (r contextBoundTransactions) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.TransactionRepositoryFacade.SaveTransaction(ctx, txn)
}

// cancelAfterSettlement cancels the caller's context as soon as a settlement write
// commits, like a shutdown signal landing mid-request.
type cancelAfterSettlement struct {
	portsrepo.SettlementRepositoryFacade
	cancel context.CancelFunc
}

func (r *cancelAfterSettlement) ApplySettlement(ctx context.Context, fromAccountID string, fromBalance decimal.Decimal, toAccountID string, toBalance decimal.Decimal, updatedAt time.Time, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.SettlementRepositoryFacade.ApplySettlement(ctx, fromAccountID, fromBalance, toAccountID, toBalance, updatedAt, txn)
	r.cancel()
	return err
}

// flakySettlements fails the first failures writes with err and then delegates.
type flakySettlements struct {
	portsrepo.SettlementRepositoryFacade
	failures int
	err      error
}

func (r *flakySettlements) ApplySettlement(ctx context.Context, fromAccountID string, fromBalance decimal.Decimal, toAccountID string, toBalance decimal.Decimal, updatedAt time.Time, txn domain.Transaction) error {
	if r.failures > 0 {
		r.failures--
		return r.err
	}
	return r.SettlementRepositoryFacade.ApplySettlement(ctx, fromAccountID, fromBalance, toAccountID, toBalance, updatedAt, txn)
}

// flakySaves fails the first failures record writes with err and then delegates.
type flakySaves struct {
	portsrepo.TransactionRepositoryFacade
	failures int
	err      error
}

func (r *flakySaves) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if r.failures > 0 {
		r.failures--
		return r.err
	}
	return r.TransactionRepositoryFacade.SaveTransaction(ctx, txn)
}

// MockRateSource is a mock type for the RateSource interface
type MockRateSource struct {
	mock.Mock
}

var _ portssvc.RateSource = (*MockRateSource)(nil)

func (m *MockRateSource) GetRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	args := m.Called(ctx, fromCode, toCode)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TransactionEvent
	err    error
}

var _ portssvc.EventPublisher = (*recordingPublisher)(nil)

func (p *recordingPublisher) Publish(_ context.Context, event domain.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []domain.TransactionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.TransactionEventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// recordingScheduler captures scheduled transaction ids.
type recordingScheduler struct {
	mu  sync.Mutex
	ids []string
}

func (s *recordingScheduler) Schedule(_ context.Context, transactionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, transactionID)
}
