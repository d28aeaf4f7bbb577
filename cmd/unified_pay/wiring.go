package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/unified_pay/internal/adapters/database/pgsql"
	"github.com/SscSPs/unified_pay/internal/adapters/events"
	"github.com/SscSPs/unified_pay/internal/adapters/fx"
	"github.com/SscSPs/unified_pay/internal/adapters/memory"
	"github.com/SscSPs/unified_pay/internal/catalog"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/unified_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/platform/config"
	"github.com/SscSPs/unified_pay/pkg/database"
)

// newRepositories returns the ledger storage selected by LEDGER_BACKEND and a
// func that releases it.
func newRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.LedgerBackend != config.LedgerBackendPostgres {
		logger.Info("Using in-memory ledger")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
}

// loadCatalog returns nil, selecting the built-in catalog, when no file is configured.
func loadCatalog(cfg *config.Config) ([]domain.PaymentOption, error) {
	if cfg.RailCatalogPath == "" {
		return nil, nil
	}
	return catalog.Load(cfg.RailCatalogPath)
}

func newRateSource(cfg *config.Config, logger *slog.Logger) portssvc.RateSource {
	var source portssvc.RateSource
	switch cfg.RateSource {
	case config.RateSourceStatic:
		source = fx.NewStaticRateSource(cfg.FXStaticRates)
	default:
		source = fx.NewHTTPRateSource(&http.Client{}, cfg.FXBaseURLs, cfg.FXTimeout, logger)
	}
	// the HTTP source may spend its full timeout on every mirror
	fetchTimeout := time.Duration(len(cfg.FXBaseURLs)) * cfg.FXTimeout
	return fx.NewCachedRateSource(source, cfg.FXCacheSize, cfg.FXCacheTTL, fx.WithFetchTimeout(fetchTimeout))
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (portssvc.EventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewLogPublisher(logger), nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to kafka: %w", err)
	}
	logger.Info("Publishing transaction events to Kafka", slog.String("topic", cfg.KafkaTopic))
	return publisher, nil
}
