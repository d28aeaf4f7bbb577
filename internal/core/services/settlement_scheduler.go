package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

const defaultSettlementQueueSize = 1024

// Settler finalizes a transaction.
type Settler interface {
	Settle(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

type scheduledSettlement struct {
	transactionID string
	due           time.Time
}

// SettlementScheduler settles transactions a fixed delay after they are scheduled.
// Transactions still pending when the scheduler stops stay INITIATED.
type SettlementScheduler struct {
	delay   time.Duration
	workers int
	queue   chan scheduledSettlement
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewSettlementScheduler creates a scheduler with the given delay and worker count.
func NewSettlementScheduler(delay time.Duration, workers int, logger *slog.Logger) *SettlementScheduler {
	if workers <= 0 {
		workers = 1
	}
	if delay < 0 {
		delay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SettlementScheduler{
		delay:   delay,
		workers: workers,
		queue:   make(chan scheduledSettlement, defaultSettlementQueueSize),
		logger:  logger.With(slog.String("component", "settlement_scheduler")),
		now:     time.Now,
	}
}

var _ TransactionScheduler = (*SettlementScheduler)(nil)

// Schedule enqueues transactionID without blocking. When the queue is full the id is
// dropped and the transaction remains available for a manual settle.
func (s *SettlementScheduler) Schedule(_ context.Context, transactionID string) {
	item := scheduledSettlement{transactionID: transactionID, due: s.now().Add(s.delay)}
	select {
	case s.queue <- item:
	default:
		s.logger.Warn("Settlement queue full, dropping auto-settlement",
			slog.String("transaction_id", transactionID))
	}
}

// Start launches the workers. Calling Start on a running scheduler is a no-op.
func (s *SettlementScheduler) Start(ctx context.Context, settler Settler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		worker := i
		group.Go(func() error {
			s.run(gctx, worker, settler)
			return nil
		})
	}
	s.cancel = cancel
	s.group = group

	s.logger.Info("Settlement scheduler started",
		slog.Int("workers", s.workers),
		slog.Duration("delay", s.delay))
}

// Stop cancels pending settlements and waits for the workers to exit.
func (s *SettlementScheduler) Stop() error {
	s.mu.Lock()
	cancel, group := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()

	if group == nil {
		return nil
	}
	cancel()
	err := group.Wait()
	s.logger.Info("Settlement scheduler stopped", slog.Int("pending", len(s.queue)))
	return err
}

func (s *SettlementScheduler) run(ctx context.Context, worker int, settler Settler) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-s.queue:
			if wait := item.due.Sub(s.now()); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			s.settle(ctx, worker, settler, item.transactionID)
		}
	}
}

func (s *SettlementScheduler) settle(ctx context.Context, worker int, settler Settler, transactionID string) {
	txn, err := settler.Settle(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyFinalized) {
			s.logger.Debug("Transaction already finalized before auto-settlement",
				slog.String("transaction_id", transactionID))
			return
		}
		s.logger.Error("Auto-settlement failed",
			slog.Int("worker", worker),
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("Auto-settlement finished",
		slog.Int("worker", worker),
		slog.String("transaction_id", transactionID),
		slog.String("status", string(txn.Status)))
}
