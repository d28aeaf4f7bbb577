package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/unified_pay/internal/core/services"
	"github.com/SscSPs/unified_pay/internal/handlers"
	"github.com/SscSPs/unified_pay/internal/middleware"
	"github.com/SscSPs/unified_pay/internal/platform/config"
	"github.com/SscSPs/unified_pay/internal/platform/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize ledger storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		logger.Error("Failed to load rail catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize event publisher", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.Error("Error closing event publisher", slog.String("error", cerr.Error()))
		}
	}()

	deps := services.ContainerDeps{
		Catalog:   catalog,
		Rates:     newRateSource(cfg, logger),
		Publisher: publisher,
	}
	if cfg.AutoSettle {
		deps.Scheduler = services.NewSettlementScheduler(cfg.SettlementDelay, cfg.SettlementWorkers, logger)
	}

	container := services.NewServiceContainer(cfg, repos, deps)
	if deps.Scheduler != nil {
		deps.Scheduler.Start(ctx, container.Payments)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), cors.New(corsConfig(cfg)))

	if cfg.RateLimit != "" {
		limiterInstance, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
			os.Exit(1)
		}
		r.Use(middleware.RateLimit(limiterInstance))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			slog.String("port", cfg.Port),
			slog.String("ledger_backend", cfg.LedgerBackend),
			slog.String("rate_source", cfg.RateSource),
			slog.String("reference_currency", cfg.ReferenceCurrency))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	if deps.Scheduler != nil {
		if err := deps.Scheduler.Stop(); err != nil {
			logger.Error("Settlement scheduler stop failed", slog.String("error", err.Error()))
		}
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	corsCfg.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	for _, origin := range cfg.CORSOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = cfg.CORSOrigins
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	return corsCfg
}
