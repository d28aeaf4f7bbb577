package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDefaults are the orchestrator-level values used when a request omits a hint.
type PaymentDefaults struct {
	ReferenceCurrency     string
	IsDomestic            bool
	NeedInstant           bool
	MerchantPrefersLowFee bool
	AllowCrypto           bool
	AmountScale           int32
	RateTimeout           time.Duration
}

// DefaultPaymentDefaults returns the defaults used when no configuration is supplied.
func DefaultPaymentDefaults() PaymentDefaults {
	return PaymentDefaults{
		ReferenceCurrency:     "INR",
		IsDomestic:            true,
		NeedInstant:           true,
		MerchantPrefersLowFee: true,
		AllowCrypto:           false,
		AmountScale:           2,
		RateTimeout:           5 * time.Second,
	}
}

// TransactionScheduler receives transaction ids that should be settled later.
type TransactionScheduler interface {
	Schedule(ctx context.Context, transactionID string)
}

// paymentService drives the INITIATED -> COMPLETED | FAILED state machine.
type paymentService struct {
	BaseService
	ledger    portssvc.LedgerSvcFacade
	router    portssvc.RoutingSvcFacade
	rates     portssvc.RateSource
	publisher portssvc.EventPublisher
	scheduler TransactionScheduler
	defaults  PaymentDefaults
	txLocks   *keyedLocks
	now       func() time.Time
}

// PaymentOption is a functional option for configuring the payment orchestrator
type PaymentOption func(*paymentService)

// WithEventPublisher publishes lifecycle events after each state change.
func WithEventPublisher(publisher portssvc.EventPublisher) PaymentOption {
	return func(s *paymentService) {
		s.publisher = publisher
	}
}

// WithAutoSettlement hands every initiated transaction to scheduler.
func WithAutoSettlement(scheduler TransactionScheduler) PaymentOption {
	return func(s *paymentService) {
		s.scheduler = scheduler
	}
}

// WithPaymentClock overrides the clock used for created/settled timestamps.
func WithPaymentClock(now func() time.Time) PaymentOption {
	return func(s *paymentService) {
		s.now = now
	}
}

// NewPaymentService creates the payment orchestrator. rates may be nil when only
// reference-currency payments are accepted.
func NewPaymentService(
	ledger portssvc.LedgerSvcFacade,
	router portssvc.RoutingSvcFacade,
	rates portssvc.RateSource,
	defaults PaymentDefaults,
	options ...PaymentOption,
) portssvc.PaymentSvcFacade {
	if defaults.ReferenceCurrency == "" {
		defaults.ReferenceCurrency = DefaultPaymentDefaults().ReferenceCurrency
	}
	defaults.ReferenceCurrency = strings.ToUpper(defaults.ReferenceCurrency)
	if defaults.RateTimeout <= 0 {
		defaults.RateTimeout = DefaultPaymentDefaults().RateTimeout
	}

	svc := &paymentService{
		ledger:   ledger,
		router:   router,
		rates:    rates,
		defaults: defaults,
		txLocks:  newKeyedLocks(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// conversion is an amount expressed in the reference currency.
type conversion struct {
	amount           decimal.Decimal
	originalAmount   decimal.Decimal
	originalCurrency string
	rate             *decimal.Decimal
}

func (s *paymentService) Initiate(ctx context.Context, req dto.InitiatePaymentRequest) (*domain.Transaction, error) {
	logger := s.GetLogger(ctx).With(
		slog.String("sender_account_id", req.SenderAccountID),
		slog.String("receiver_account_id", req.ReceiverAccountID))

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, req.Amount)
	}
	if req.SenderAccountID == req.ReceiverAccountID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSameAccount, req.SenderAccountID)
	}
	for _, id := range []string{req.SenderAccountID, req.ReceiverAccountID} {
		if _, err := s.ledger.GetAccount(ctx, id); err != nil {
			return nil, err
		}
	}

	conv, err := s.convert(ctx, req.Amount, req.Currency)
	if err != nil {
		logger.Warn("Currency conversion failed", slog.String("currency", req.Currency), slog.String("error", err.Error()))
		return nil, err
	}

	pctx, err := s.buildContext(conv, req.IsDomestic, req.NeedInstant, req.PreferredMethod, req.MerchantPrefersLowFee, req.AllowCrypto)
	if err != nil {
		return nil, err
	}

	rail, err := s.resolveRail(pctx, req.Rail)
	if err != nil {
		return nil, err
	}

	txn := domain.Transaction{
		TransactionID:     uuid.NewString(),
		SenderAccountID:   req.SenderAccountID,
		ReceiverAccountID: req.ReceiverAccountID,
		Amount:            conv.amount,
		OriginalAmount:    conv.originalAmount,
		OriginalCurrency:  conv.originalCurrency,
		FXRate:            conv.rate,
		Rail:              rail,
		Instant:           pctx.NeedInstant,
		Status:            domain.StatusInitiated,
		Metadata:          copyMetadata(req.Metadata),
		CreatedAt:         s.now(),
	}

	if err := s.ledger.RecordTransaction(ctx, txn); err != nil {
		return nil, err
	}

	logger.Info("Payment initiated",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("rail", string(rail)),
		slog.String("amount", txn.Amount.String()),
		slog.String("original_currency", txn.OriginalCurrency))

	s.publish(ctx, txn)
	if s.scheduler != nil {
		s.scheduler.Schedule(ctx, txn.TransactionID)
	}
	return &txn, nil
}

func (s *paymentService) ChoosePaymentMethod(pctx domain.PaymentContext) domain.PaymentMethod {
	return s.router.Recommend(pctx)
}

func (s *paymentService) Preview(ctx context.Context, req dto.RecommendRailRequest) (*dto.RailRecommendationResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, req.Amount)
	}

	conv, err := s.convert(ctx, req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	pctx, err := s.buildContext(conv, req.IsDomestic, req.NeedInstant, req.PreferredMethod, req.MerchantPrefersLowFee, req.AllowCrypto)
	if err != nil {
		return nil, err
	}

	return &dto.RailRecommendationResponse{
		Recommended:       s.router.Recommend(pctx),
		Amount:            conv.amount,
		ReferenceCurrency: s.defaults.ReferenceCurrency,
		OriginalAmount:    conv.originalAmount,
		OriginalCurrency:  conv.originalCurrency,
		FXRate:            conv.rate,
		Scores:            s.router.Explain(pctx),
	}, nil
}

func (s *paymentService) Settle(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	unlock := s.txLocks.lock(transactionID)
	defer unlock()

	txn, err := s.loadInitiated(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	reasons, err := s.failureReasons(ctx, txn)
	if err != nil {
		s.LogError(ctx, err, "Settlement precheck failed", slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to settle transaction %s: %w", transactionID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Past this point the outcome is written even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	now := s.now()

	if len(reasons) == 0 {
		completed := txn.Clone()
		if err := completed.Complete(now); err != nil {
			return nil, err
		}
		err := s.ledger.SettleTransfer(ctx, completed)
		switch {
		case err == nil:
			txn = completed
		case isSettlementFailure(err):
			// balances moved between the precheck and the fenced transfer
			reasons = append(reasons, err.Error())
		default:
			s.LogError(ctx, err, "Settlement transfer failed", slog.String("transaction_id", transactionID))
			return nil, fmt.Errorf("failed to settle transaction %s: %w", transactionID, err)
		}
	}

	if len(reasons) > 0 {
		if err := txn.Fail(strings.Join(reasons, "; "), now); err != nil {
			return nil, err
		}
		if err := s.ledger.RecordTransaction(ctx, txn); err != nil {
			s.LogError(ctx, err, "Failed to persist settlement outcome",
				slog.String("transaction_id", transactionID),
				slog.String("status", string(txn.Status)))
			return nil, err
		}
		s.LogWarn(ctx, "Payment failed at settlement",
			slog.String("transaction_id", transactionID),
			slog.String("reason", txn.FailureReason))
	} else {
		s.LogInfo(ctx, "Payment settled",
			slog.String("transaction_id", transactionID),
			slog.String("amount", txn.Amount.String()))
	}

	s.publish(ctx, txn)
	return &txn, nil
}

func (s *paymentService) Fail(ctx context.Context, transactionID string, reason string) (*domain.Transaction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("failure reason is required")
	}

	unlock := s.txLocks.lock(transactionID)
	defer unlock()

	txn, err := s.loadInitiated(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := txn.Fail(reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.ledger.RecordTransaction(ctx, txn); err != nil {
		return nil, err
	}

	s.LogWarn(ctx, "Payment marked failed",
		slog.String("transaction_id", transactionID),
		slog.String("reason", reason))
	s.publish(ctx, txn)
	return &txn, nil
}

func (s *paymentService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, found, err := s.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}
	return &txn, nil
}

func (s *paymentService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	return s.ledger.ListTransactions(ctx, params)
}

// loadInitiated must be called with the transaction lock held.
func (s *paymentService) loadInitiated(ctx context.Context, transactionID string) (domain.Transaction, error) {
	txn, found, err := s.ledger.GetTransaction(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}
	if !found {
		return domain.Transaction{}, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}
	if txn.Status.IsTerminal() {
		return domain.Transaction{}, fmt.Errorf("%w: transaction %s is %s", apperrors.ErrAlreadyFinalized, transactionID, txn.Status)
	}
	return txn, nil
}

// failureReasons re-resolves both accounts by id and checks the sender's
// current balance. Lookup failures other than not-found are reported as reasons too.
// failureReasons collects the business reasons txn cannot settle. Lookup errors
// other than a missing account are returned as errors.
func (s *paymentService) failureReasons(ctx context.Context, txn domain.Transaction) ([]string, error) {
	var reasons []string

	if txn.SenderAccountID == txn.ReceiverAccountID {
		reasons = append(reasons, "sender and receiver are the same account")
	}

	sender, err := s.ledger.GetAccount(ctx, txn.SenderAccountID)
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		reasons = append(reasons, fmt.Sprintf("sender account %s not found", txn.SenderAccountID))
	case err != nil:
		return nil, err
	}
	_, err = s.ledger.GetAccount(ctx, txn.ReceiverAccountID)
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		reasons = append(reasons, fmt.Sprintf("receiver account %s not found", txn.ReceiverAccountID))
	case err != nil:
		return nil, err
	}

	if sender != nil && txn.Amount.GreaterThan(sender.Balance) {
		reasons = append(reasons, fmt.Sprintf("insufficient balance: available %s, required %s",
			sender.Balance.StringFixed(s.defaults.AmountScale), txn.Amount.StringFixed(s.defaults.AmountScale)))
	}
	return reasons, nil
}

// isSettlementFailure reports whether err is a business outcome to be recorded on the
// transaction rather than returned.
func isSettlementFailure(err error) bool {
	return errors.Is(err, apperrors.ErrInsufficientFunds) ||
		errors.Is(err, apperrors.ErrAccountNotFound) ||
		errors.Is(err, apperrors.ErrSameAccount) ||
		errors.Is(err, apperrors.ErrInvalidAmount)
}

// convert expresses amount in the reference currency. The rate lookup runs
// before any lock is taken and is bounded by RateTimeout.
func (s *paymentService) convert(ctx context.Context, amount decimal.Decimal, currency string) (conversion, error) {
	ref := s.defaults.ReferenceCurrency
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = ref
	}

	conv := conversion{amount: amount, originalAmount: amount, originalCurrency: code}
	if code == ref {
		return conv, nil
	}
	if s.rates == nil {
		return conversion{}, fmt.Errorf("%w: no rate source configured for %s", apperrors.ErrRateUnavailable, code)
	}

	rateCtx, cancel := context.WithTimeout(ctx, s.defaults.RateTimeout)
	defer cancel()

	rate, err := s.rates.GetRate(rateCtx, code, ref)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnsupportedCurrency) || errors.Is(err, apperrors.ErrRateUnavailable) {
			return conversion{}, err
		}
		return conversion{}, fmt.Errorf("%w: %s to %s: %v", apperrors.ErrRateUnavailable, code, ref, err)
	}
	if !rate.IsPositive() {
		return conversion{}, fmt.Errorf("%w: %s to %s returned %s", apperrors.ErrRateUnavailable, code, ref, rate)
	}

	converted := amount.Mul(rate).Round(s.defaults.AmountScale)
	if !converted.IsPositive() {
		return conversion{}, fmt.Errorf("%w: %s %s converts to %s %s", apperrors.ErrInvalidAmount, amount, code, converted, ref)
	}

	conv.amount = converted
	conv.rate = &rate
	return conv, nil
}

func (s *paymentService) buildContext(conv conversion, domestic, instant *bool, preferred *string, lowFee, allowCrypto *bool) (domain.PaymentContext, error) {
	pctx := domain.PaymentContext{
		Amount:                conv.amount,
		Currency:              s.defaults.ReferenceCurrency,
		IsDomestic:            boolOr(domestic, s.defaults.IsDomestic),
		NeedInstant:           boolOr(instant, s.defaults.NeedInstant),
		MerchantPrefersLowFee: boolOr(lowFee, s.defaults.MerchantPrefersLowFee),
		AllowCrypto:           boolOr(allowCrypto, s.defaults.AllowCrypto),
	}
	if preferred != nil && strings.TrimSpace(*preferred) != "" {
		method, err := domain.ParsePaymentMethod(*preferred)
		if err != nil {
			return domain.PaymentContext{}, err
		}
		pctx.PreferredMethod = &method
	}
	return pctx, nil
}

// resolveRail applies an explicit override, which is not checked for eligibility.
func (s *paymentService) resolveRail(pctx domain.PaymentContext, explicit *string) (domain.PaymentMethod, error) {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		return domain.ParsePaymentMethod(*explicit)
	}
	return s.router.Recommend(pctx), nil
}

func (s *paymentService) publish(ctx context.Context, txn domain.Transaction) {
	if s.publisher == nil {
		return
	}
	event := domain.TransactionEvent{
		Type:        domain.EventForStatus(txn.Status),
		Transaction: txn.Clone(),
		OccurredAt:  s.now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish transaction event",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("event_type", string(event.Type)))
	}
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func copyMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
