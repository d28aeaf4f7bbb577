package services

import (
	"log/slog"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/platform/config"
)

// ContainerDeps are the collaborators the core needs from the outside world.
type ContainerDeps struct {
	Catalog   []domain.PaymentOption // nil selects DefaultCatalog
	Rates     portssvc.RateSource
	Publisher portssvc.EventPublisher
	Scheduler *SettlementScheduler // nil disables auto-settlement
}

// PaymentDefaultsFromConfig maps configuration onto orchestrator defaults.
func PaymentDefaultsFromConfig(cfg *config.Config) PaymentDefaults {
	return PaymentDefaults{
		ReferenceCurrency:     cfg.ReferenceCurrency,
		IsDomestic:            cfg.DefaultDomestic,
		NeedInstant:           cfg.DefaultInstant,
		MerchantPrefersLowFee: cfg.MerchantPrefersLowFees,
		AllowCrypto:           cfg.AllowCrypto,
		AmountScale:           cfg.AmountScale,
		RateTimeout:           cfg.FXTimeout,
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps ContainerDeps) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Ledger = NewLedgerService(repos.AccountRepo, repos.TransactionRepo, repos.SettlementRepo)
	container.Routing = NewRoutingService(deps.Catalog)

	options := []PaymentOption{}
	if deps.Publisher != nil {
		options = append(options, WithEventPublisher(deps.Publisher))
	}
	if deps.Scheduler != nil {
		options = append(options, WithAutoSettlement(deps.Scheduler))
	}
	container.Payments = NewPaymentService(
		container.Ledger,
		container.Routing,
		deps.Rates,
		PaymentDefaultsFromConfig(cfg),
		options...,
	)

	slog.Debug("Service container initialized",
		slog.Int("rails", len(container.Routing.Catalog())),
		slog.Bool("auto_settle", deps.Scheduler != nil))
	return container
}
