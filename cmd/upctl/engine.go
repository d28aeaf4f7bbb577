package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/unified_pay/internal/adapters/fx"
	"github.com/SscSPs/unified_pay/internal/adapters/memory"
	"github.com/SscSPs/unified_pay/internal/catalog"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/core/services"
	"github.com/SscSPs/unified_pay/internal/platform/config"
	"github.com/spf13/cobra"
)

const cliRateTimeout = 5 * time.Second

// engine is an in-process orchestrator over an in-memory ledger.
type engine struct {
	ledger   portssvc.LedgerSvcFacade
	routing  portssvc.RoutingSvcFacade
	payments portssvc.PaymentSvcFacade
}

func loadRails(cmd *cobra.Command) ([]domain.PaymentOption, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		return services.DefaultCatalog(), nil
	}
	return catalog.Load(path)
}

func rateSource(cmd *cobra.Command) (portssvc.RateSource, error) {
	raw, _ := cmd.Flags().GetString("rates")
	if raw == "" {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
		return fx.NewHTTPRateSource(&http.Client{}, nil, cliRateTimeout, logger), nil
	}
	rates, err := config.ParseStaticRates(raw)
	if err != nil {
		return nil, err
	}
	return fx.NewStaticRateSource(rates), nil
}

func newEngine(cmd *cobra.Command, defaults services.PaymentDefaults) (*engine, error) {
	rails, err := loadRails(cmd)
	if err != nil {
		return nil, err
	}
	rates, err := rateSource(cmd)
	if err != nil {
		return nil, err
	}
	reference, _ := cmd.Flags().GetString("reference")
	defaults.ReferenceCurrency = reference

	repos := memory.NewRepositoryProvider()
	ledger := services.NewLedgerService(repos.AccountRepo, repos.TransactionRepo, repos.SettlementRepo)
	routing := services.NewRoutingService(rails)
	return &engine{
		ledger:   ledger,
		routing:  routing,
		payments: services.NewPaymentService(ledger, routing, rates, defaults),
	}, nil
}

func methodLabel(m domain.PaymentMethod) string {
	return fmt.Sprintf("%-14s", m)
}
