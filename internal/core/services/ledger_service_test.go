package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/unified_pay/internal/adapters/memory"
	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/core/services"
	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	ledger portssvc.LedgerSvcFacade
	ctx    context.Context
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	repos := memory.NewRepositoryProvider()
	suite.ledger = services.NewLedgerService(repos.AccountRepo, repos.TransactionRepo, repos.SettlementRepo)
}

func (suite *LedgerServiceTestSuite) open(balance int64) string {
	account, err := suite.ledger.OpenAccount(suite.ctx, "owner-1", decimal.NewFromInt(balance))
	suite.Require().NoError(err)
	return account.AccountID
}

func (suite *LedgerServiceTestSuite) balance(accountID string) decimal.Decimal {
	bal, err := suite.ledger.GetBalance(suite.ctx, accountID)
	suite.Require().NoError(err)
	return bal
}

func (suite *LedgerServiceTestSuite) TestOpenAccount() {
	account, err := suite.ledger.OpenAccount(suite.ctx, "alice", decimal.NewFromInt(1000))
	suite.Require().NoError(err)
	suite.NotEmpty(account.AccountID)
	suite.Equal("alice", account.OwnerID)
	suite.True(decimal.NewFromInt(1000).Equal(account.Balance))
	suite.False(account.CreatedAt.IsZero())

	got, err := suite.ledger.GetAccount(suite.ctx, account.AccountID)
	suite.Require().NoError(err)
	suite.Equal(account.AccountID, got.AccountID)
}

func (suite *LedgerServiceTestSuite) TestOpenAccount_Validation() {
	_, err := suite.ledger.OpenAccount(suite.ctx, "", decimal.Zero)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.ledger.OpenAccount(suite.ctx, "bob", decimal.NewFromInt(-1))
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (suite *LedgerServiceTestSuite) TestGetAccount_NotFound() {
	_, err := suite.ledger.GetAccount(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)

	_, err = suite.ledger.GetBalance(suite.ctx, "missing")
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (suite *LedgerServiceTestSuite) TestCloseAccount() {
	id := suite.open(10)
	suite.Require().NoError(suite.ledger.CloseAccount(suite.ctx, id))

	_, err := suite.ledger.GetAccount(suite.ctx, id)
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
	suite.ErrorIs(suite.ledger.CloseAccount(suite.ctx, id), apperrors.ErrAccountNotFound)
}

func (suite *LedgerServiceTestSuite) TestListAccounts() {
	suite.open(1)
	suite.open(2)

	accounts, err := suite.ledger.ListAccounts(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(accounts, 2)
}

func (suite *LedgerServiceTestSuite) TestDebitCredit() {
	id := suite.open(100)

	suite.Require().NoError(suite.ledger.Debit(suite.ctx, id, decimal.NewFromInt(40)))
	suite.True(decimal.NewFromInt(60).Equal(suite.balance(id)))

	suite.Require().NoError(suite.ledger.Credit(suite.ctx, id, decimal.RequireFromString("0.50")))
	suite.True(decimal.RequireFromString("60.5").Equal(suite.balance(id)))

	// debiting the whole balance is allowed
	suite.Require().NoError(suite.ledger.Debit(suite.ctx, id, decimal.RequireFromString("60.5")))
	suite.True(suite.balance(id).IsZero())
}

func (suite *LedgerServiceTestSuite) TestDebit_Errors() {
	id := suite.open(100)

	err := suite.ledger.Debit(suite.ctx, id, decimal.NewFromInt(101))
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Contains(err.Error(), "insufficient balance")
	suite.True(decimal.NewFromInt(100).Equal(suite.balance(id)))

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		suite.ErrorIs(suite.ledger.Debit(suite.ctx, id, amount), apperrors.ErrInvalidAmount)
		suite.ErrorIs(suite.ledger.Credit(suite.ctx, id, amount), apperrors.ErrInvalidAmount)
	}

	suite.ErrorIs(suite.ledger.Debit(suite.ctx, "missing", decimal.NewFromInt(1)), apperrors.ErrAccountNotFound)
	suite.ErrorIs(suite.ledger.Credit(suite.ctx, "missing", decimal.NewFromInt(1)), apperrors.ErrAccountNotFound)
}

func (suite *LedgerServiceTestSuite) TestTransfer() {
	a := suite.open(1000)
	b := suite.open(500)

	suite.Require().NoError(suite.ledger.Transfer(suite.ctx, a, b, decimal.NewFromInt(100)))
	suite.True(decimal.NewFromInt(900).Equal(suite.balance(a)))
	suite.True(decimal.NewFromInt(600).Equal(suite.balance(b)))
}

func (suite *LedgerServiceTestSuite) TestTransfer_Errors() {
	a := suite.open(1000)
	b := suite.open(500)

	suite.ErrorIs(suite.ledger.Transfer(suite.ctx, a, b, decimal.NewFromInt(1100)), apperrors.ErrInsufficientFunds)
	suite.ErrorIs(suite.ledger.Transfer(suite.ctx, a, a, decimal.NewFromInt(1)), apperrors.ErrSameAccount)
	suite.ErrorIs(suite.ledger.Transfer(suite.ctx, a, b, decimal.Zero), apperrors.ErrInvalidAmount)
	suite.ErrorIs(suite.ledger.Transfer(suite.ctx, a, "missing", decimal.NewFromInt(1)), apperrors.ErrAccountNotFound)
	suite.ErrorIs(suite.ledger.Transfer(suite.ctx, "missing", b, decimal.NewFromInt(1)), apperrors.ErrAccountNotFound)

	suite.True(decimal.NewFromInt(1000).Equal(suite.balance(a)))
	suite.True(decimal.NewFromInt(500).Equal(suite.balance(b)))
}

func (suite *LedgerServiceTestSuite) TestTransfer_ConcurrentConservesTotal() {
	a := suite.open(1000)
	b := suite.open(1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = suite.ledger.Transfer(suite.ctx, a, b, decimal.NewFromInt(30))
		}()
		go func() {
			defer wg.Done()
			_ = suite.ledger.Transfer(suite.ctx, b, a, decimal.NewFromInt(20))
		}()
	}
	wg.Wait()

	total := suite.balance(a).Add(suite.balance(b))
	suite.True(decimal.NewFromInt(2000).Equal(total), "total was %s", total)
	suite.False(suite.balance(a).IsNegative())
	suite.False(suite.balance(b).IsNegative())
}

func (suite *LedgerServiceTestSuite) TestTransfer_ConcurrentNeverOverdraws() {
	a := suite.open(100)
	b := suite.open(0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := suite.ledger.Transfer(suite.ctx, a, b, decimal.NewFromInt(10)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	suite.Equal(10, succeeded)
	suite.True(suite.balance(a).IsZero())
	suite.True(decimal.NewFromInt(100).Equal(suite.balance(b)))
}

func (suite *LedgerServiceTestSuite) completedTxn(id, from, to string, amount int64) domain.Transaction {
	txn := domain.Transaction{
		TransactionID:     id,
		SenderAccountID:   from,
		ReceiverAccountID: to,
		Amount:            decimal.NewFromInt(amount),
		Status:            domain.StatusInitiated,
		CreatedAt:         time.Now().UTC(),
	}
	suite.Require().NoError(txn.Complete(time.Now().UTC()))
	return txn
}

func (suite *LedgerServiceTestSuite) TestSettleTransfer() {
	a := suite.open(1000)
	b := suite.open(500)

	suite.Require().NoError(suite.ledger.SettleTransfer(suite.ctx, suite.completedTxn("txn-1", a, b, 100)))
	suite.True(decimal.NewFromInt(900).Equal(suite.balance(a)))
	suite.True(decimal.NewFromInt(600).Equal(suite.balance(b)))

	stored, found, err := suite.ledger.GetTransaction(suite.ctx, "txn-1")
	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal(domain.StatusCompleted, stored.Status)
}

func (suite *LedgerServiceTestSuite) TestSettleTransfer_Rejections() {
	a := suite.open(1000)
	b := suite.open(500)

	initiated := suite.completedTxn("txn-open", a, b, 100)
	initiated.Status = domain.StatusInitiated
	suite.ErrorIs(suite.ledger.SettleTransfer(suite.ctx, initiated), apperrors.ErrValidation)
	suite.ErrorIs(suite.ledger.SettleTransfer(suite.ctx, suite.completedTxn("txn-big", a, b, 1100)), apperrors.ErrInsufficientFunds)
	suite.ErrorIs(suite.ledger.SettleTransfer(suite.ctx, suite.completedTxn("txn-self", a, a, 1)), apperrors.ErrSameAccount)
	suite.ErrorIs(suite.ledger.SettleTransfer(suite.ctx, suite.completedTxn("txn-gone", a, "missing", 1)), apperrors.ErrAccountNotFound)

	suite.True(decimal.NewFromInt(1000).Equal(suite.balance(a)))
	suite.True(decimal.NewFromInt(500).Equal(suite.balance(b)))
	for _, id := range []string{"txn-open", "txn-big", "txn-self", "txn-gone"} {
		_, found, err := suite.ledger.GetTransaction(suite.ctx, id)
		suite.NoError(err)
		suite.False(found, "%s must not be stored when the settlement is rejected", id)
	}
}

func (suite *LedgerServiceTestSuite) TestRecordAndGetTransaction() {
	txn := domain.Transaction{
		TransactionID:     "txn-1",
		SenderAccountID:   "a",
		ReceiverAccountID: "b",
		Amount:            decimal.NewFromInt(5),
		Status:            domain.StatusInitiated,
		Metadata:          map[string]string{"order": "42"},
		CreatedAt:         time.Now().UTC(),
	}
	suite.Require().NoError(suite.ledger.RecordTransaction(suite.ctx, txn))

	got, found, err := suite.ledger.GetTransaction(suite.ctx, "txn-1")
	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal("42", got.Metadata["order"])

	// returned values are copies
	got.Metadata["order"] = "changed"
	again, _, _ := suite.ledger.GetTransaction(suite.ctx, "txn-1")
	suite.Equal("42", again.Metadata["order"])

	_, found, err = suite.ledger.GetTransaction(suite.ctx, "unknown")
	suite.NoError(err)
	suite.False(found)

	suite.ErrorIs(suite.ledger.RecordTransaction(suite.ctx, domain.Transaction{}), apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestListTransactions_Paginates() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		suite.Require().NoError(suite.ledger.RecordTransaction(suite.ctx, domain.Transaction{
			TransactionID: id,
			Status:        domain.StatusInitiated,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := suite.ledger.ListTransactions(suite.ctx, dto.ListTransactionsParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(page.Transactions, 2)
	suite.Equal("t3", page.Transactions[0].TransactionID)
	suite.Require().NotNil(page.NextToken)

	page, err = suite.ledger.ListTransactions(suite.ctx, dto.ListTransactionsParams{Limit: 2, NextToken: page.NextToken})
	suite.Require().NoError(err)
	suite.Require().Len(page.Transactions, 1)
	suite.Equal("t1", page.Transactions[0].TransactionID)
	suite.Nil(page.NextToken)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func TestLedgerService_RepositoryFailures(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("connection reset")

	t.Run("save account", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		accounts.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(dbErr).Once()
		ledger := services.NewLedgerService(accounts, new(MockTransactionRepository), new(MockSettlementRepository))

		_, err := ledger.OpenAccount(ctx, "owner", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, dbErr)
		accounts.AssertExpectations(t)
	})

	t.Run("lookup error is not a not-found", func(t *testing.T) {
		accounts := new(MockAccountRepository)
		accounts.On("FindAccountByID", ctx, "a").Return(nil, dbErr).Once()
		ledger := services.NewLedgerService(accounts, new(MockTransactionRepository), new(MockSettlementRepository))

		_, err := ledger.GetAccount(ctx, "a")
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, apperrors.ErrAccountNotFound)
	})

	t.Run("apply transfer", func(t *testing.T) {
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		accounts := new(MockAccountRepository)
		accounts.On("FindAccountByID", ctx, "a").Return(&domain.Account{AccountID: "a", Balance: decimal.NewFromInt(10)}, nil)
		accounts.On("FindAccountByID", ctx, "b").Return(&domain.Account{AccountID: "b", Balance: decimal.NewFromInt(0)}, nil)
		accounts.On("ApplyTransfer", ctx, "a", mock.Anything, "b", mock.Anything, now).Return(dbErr).Once()
		ledger := services.NewLedgerService(accounts, new(MockTransactionRepository), new(MockSettlementRepository),
			services.WithLedgerClock(func() time.Time { return now }))

		err := ledger.Transfer(ctx, "a", "b", decimal.NewFromInt(4))
		assert.ErrorIs(t, err, dbErr)
		accounts.AssertExpectations(t)
	})

	t.Run("apply settlement", func(t *testing.T) {
		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		accounts := new(MockAccountRepository)
		accounts.On("FindAccountByID", ctx, "a").Return(&domain.Account{AccountID: "a", Balance: decimal.NewFromInt(10)}, nil)
		accounts.On("FindAccountByID", ctx, "b").Return(&domain.Account{AccountID: "b", Balance: decimal.NewFromInt(0)}, nil)
		settlements := new(MockSettlementRepository)
		settlements.On("ApplySettlement", ctx, "a", mock.Anything, "b", mock.Anything, now,
			mock.AnythingOfType("domain.Transaction")).Return(dbErr).Once()
		ledger := services.NewLedgerService(accounts, new(MockTransactionRepository), settlements,
			services.WithLedgerClock(func() time.Time { return now }))

		txn := domain.Transaction{TransactionID: "t", SenderAccountID: "a", ReceiverAccountID: "b",
			Amount: decimal.NewFromInt(4), Status: domain.StatusCompleted}
		err := ledger.SettleTransfer(ctx, txn)
		assert.ErrorIs(t, err, dbErr)
		settlements.AssertExpectations(t)
	})

	t.Run("load transaction", func(t *testing.T) {
		txns := new(MockTransactionRepository)
		txns.On("FindTransactionByID", ctx, "t").Return(nil, dbErr).Once()
		ledger := services.NewLedgerService(new(MockAccountRepository), txns, new(MockSettlementRepository))

		_, found, err := ledger.GetTransaction(ctx, "t")
		assert.ErrorIs(t, err, dbErr)
		assert.False(t, found)
	})

	t.Run("list limit is clamped", func(t *testing.T) {
		txns := new(MockTransactionRepository)
		txns.On("ListTransactions", ctx, 100, (*string)(nil)).Return([]domain.Transaction{}, nil, nil).Once()
		txns.On("ListTransactions", ctx, 20, (*string)(nil)).Return([]domain.Transaction{}, nil, nil).Once()
		ledger := services.NewLedgerService(new(MockAccountRepository), txns, new(MockSettlementRepository))

		_, err := ledger.ListTransactions(ctx, dto.ListTransactionsParams{Limit: 1000})
		assert.NoError(t, err)
		_, err = ledger.ListTransactions(ctx, dto.ListTransactionsParams{Limit: 0})
		assert.NoError(t, err)
		txns.AssertExpectations(t)
	})
}
