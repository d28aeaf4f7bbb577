package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Ledger storage backends.
const (
	LedgerBackendMemory   = "memory"
	LedgerBackendPostgres = "postgres"
)

// Rate sources.
const (
	RateSourceHTTP   = "http"
	RateSourceStatic = "static"
)

// LoggingConfig holds the slog settings.
type LoggingConfig struct {
	Level         string
	Format        string
	IncludeCaller bool
}

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	Logging       LoggingConfig
	JWTSecret     string // empty disables API authentication
	CORSOrigins   []string
	RateLimit     string
	EnableDBCheck bool

	// Payment defaults
	ReferenceCurrency      string
	AllowCrypto            bool
	DefaultDomestic        bool
	DefaultInstant         bool
	MerchantPrefersLowFees bool
	AmountScale            int32
	RailCatalogPath        string

	// Ledger storage
	LedgerBackend  string
	DatabaseURL    string
	MigrationsPath string

	// FX
	RateSource    string
	FXBaseURLs    []string
	FXTimeout     time.Duration
	FXCacheTTL    time.Duration
	FXCacheSize   int
	FXStaticRates map[string]decimal.Decimal // keyed "FROM_TO"

	// Settlement
	AutoSettle        bool
	SettlementDelay   time.Duration
	SettlementWorkers int

	// Events
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("LOG_INCLUDE_CALLER", false)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("REFERENCE_CURRENCY", "INR")
	viper.SetDefault("ALLOW_CRYPTO", false)
	viper.SetDefault("DEFAULT_DOMESTIC", true)
	viper.SetDefault("DEFAULT_INSTANT", true)
	viper.SetDefault("MERCHANT_PREFERS_LOW_FEES", true)
	viper.SetDefault("AMOUNT_SCALE", 2)
	viper.SetDefault("RAIL_CATALOG_PATH", "")
	viper.SetDefault("LEDGER_BACKEND", LedgerBackendMemory)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("RATE_SOURCE", RateSourceHTTP)
	viper.SetDefault("FX_BASE_URLS", "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1,https://latest.currency-api.pages.dev/v1")
	viper.SetDefault("FX_TIMEOUT", "5s")
	viper.SetDefault("FX_CACHE_TTL", "10m")
	viper.SetDefault("FX_CACHE_SIZE", 128)
	viper.SetDefault("FX_STATIC_RATES", "")
	viper.SetDefault("AUTO_SETTLE", true)
	viper.SetDefault("SETTLEMENT_DELAY", "2s")
	viper.SetDefault("SETTLEMENT_WORKERS", 4)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "payments.transactions")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.Logging = LoggingConfig{
		Level:         viper.GetString("LOG_LEVEL"),
		Format:        viper.GetString("LOG_FORMAT"),
		IncludeCaller: viper.GetBool("LOG_INCLUDE_CALLER"),
	}
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" && cfg.IsProduction {
		log.Println("Warning: JWT_SECRET not set. The payment API is unauthenticated.")
	}
	cfg.CORSOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.ReferenceCurrency = strings.ToUpper(strings.TrimSpace(viper.GetString("REFERENCE_CURRENCY")))
	if cfg.ReferenceCurrency == "" {
		cfg.ReferenceCurrency = "INR"
	}
	cfg.AllowCrypto = viper.GetBool("ALLOW_CRYPTO")
	cfg.DefaultDomestic = viper.GetBool("DEFAULT_DOMESTIC")
	cfg.DefaultInstant = viper.GetBool("DEFAULT_INSTANT")
	cfg.MerchantPrefersLowFees = viper.GetBool("MERCHANT_PREFERS_LOW_FEES")
	cfg.AmountScale = viper.GetInt32("AMOUNT_SCALE")
	if cfg.AmountScale < 0 {
		log.Printf("Warning: Invalid value for AMOUNT_SCALE (%d). Defaulting to 2.\n", cfg.AmountScale)
		cfg.AmountScale = 2
	}
	cfg.RailCatalogPath = viper.GetString("RAIL_CATALOG_PATH")

	cfg.LedgerBackend = strings.ToLower(viper.GetString("LEDGER_BACKEND"))
	switch cfg.LedgerBackend {
	case LedgerBackendMemory, LedgerBackendPostgres:
	default:
		return nil, fmt.Errorf("invalid LEDGER_BACKEND %q: must be %s or %s", cfg.LedgerBackend, LedgerBackendMemory, LedgerBackendPostgres)
	}
	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.LedgerBackend == LedgerBackendPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PGSQL_URL is required when LEDGER_BACKEND is %s", LedgerBackendPostgres)
	}
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.RateSource = strings.ToLower(viper.GetString("RATE_SOURCE"))
	switch cfg.RateSource {
	case RateSourceHTTP, RateSourceStatic:
	default:
		return nil, fmt.Errorf("invalid RATE_SOURCE %q: must be %s or %s", cfg.RateSource, RateSourceHTTP, RateSourceStatic)
	}
	cfg.FXBaseURLs = splitList(viper.GetString("FX_BASE_URLS"))
	cfg.FXTimeout = durationOr("FX_TIMEOUT", 5*time.Second)
	cfg.FXCacheTTL = durationOr("FX_CACHE_TTL", 10*time.Minute)
	cfg.FXCacheSize = viper.GetInt("FX_CACHE_SIZE")
	if cfg.FXCacheSize <= 0 {
		cfg.FXCacheSize = 128
	}
	rates, err := ParseStaticRates(viper.GetString("FX_STATIC_RATES"))
	if err != nil {
		return nil, err
	}
	cfg.FXStaticRates = rates

	cfg.AutoSettle = viper.GetBool("AUTO_SETTLE")
	cfg.SettlementDelay = durationOr("SETTLEMENT_DELAY", 2*time.Second)
	cfg.SettlementWorkers = viper.GetInt("SETTLEMENT_WORKERS")
	if cfg.SettlementWorkers <= 0 {
		cfg.SettlementWorkers = 4
	}

	cfg.KafkaBrokers = splitList(viper.GetString("KAFKA_BROKERS"))
	cfg.KafkaTopic = viper.GetString("KAFKA_TOPIC")

	return cfg, nil
}

// ParseStaticRates parses "USD_INR=83.2,EUR_INR=90.1" into a rate table keyed "FROM_TO".
func ParseStaticRates(raw string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for _, entry := range splitList(raw) {
		pair, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid FX_STATIC_RATES entry %q: expected FROM_TO=rate", entry)
		}
		from, to, ok := strings.Cut(strings.TrimSpace(pair), "_")
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid FX_STATIC_RATES pair %q: expected FROM_TO", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("invalid FX_STATIC_RATES rate %q for %s", value, pair)
		}
		rates[strings.ToUpper(from)+"_"+strings.ToUpper(to)] = rate
	}
	return rates, nil
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
