package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/SscSPs/unified_pay/internal/adapters/events"
	"github.com/SscSPs/unified_pay/internal/adapters/fx"
	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRepositories_Memory(t *testing.T) {
	cfg := &config.Config{LedgerBackend: config.LedgerBackendMemory}
	repos, closeRepos, err := newRepositories(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	defer closeRepos()

	assert.NotNil(t, repos.AccountRepo)
	assert.NotNil(t, repos.TransactionRepo)
}

func TestNewRateSource_StaticIsCached(t *testing.T) {
	cfg := &config.Config{
		RateSource:    config.RateSourceStatic,
		FXStaticRates: map[string]decimal.Decimal{"USD_INR": decimal.RequireFromString("83.2")},
		FXCacheSize:   8,
	}
	source := newRateSource(cfg, slog.Default())
	cached, ok := source.(*fx.CachedRateSource)
	require.True(t, ok)

	rate, err := source.GetRate(context.Background(), "usd", "inr")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("83.2").Equal(rate))
	assert.Equal(t, 1, cached.Len())

	_, err = source.GetRate(context.Background(), "GBP", "INR")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedCurrency)
}

func TestNewPublisher_DefaultsToLog(t *testing.T) {
	publisher, err := newPublisher(&config.Config{}, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &events.LogPublisher{}, publisher)
}

func TestLoadCatalog(t *testing.T) {
	rails, err := loadCatalog(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, rails)

	rails, err = loadCatalog(&config.Config{RailCatalogPath: "../../configs/rails.yaml"})
	require.NoError(t, err)
	assert.Len(t, rails, 6)

	_, err = loadCatalog(&config.Config{RailCatalogPath: "does-not-exist.yaml"})
	assert.Error(t, err)
}

func TestCorsConfig(t *testing.T) {
	all := corsConfig(&config.Config{CORSOrigins: []string{"*"}})
	assert.True(t, all.AllowAllOrigins)
	assert.Empty(t, all.AllowOrigins)

	some := corsConfig(&config.Config{CORSOrigins: []string{"https://pay.example.com"}})
	assert.False(t, some.AllowAllOrigins)
	assert.Equal(t, []string{"https://pay.example.com"}, some.AllowOrigins)
	assert.NoError(t, some.Validate())
}
