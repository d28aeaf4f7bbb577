package handlers

import (
	"net/http"

	"github.com/SscSPs/unified_pay/internal/adapters/fx"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/middleware"
	"github.com/SscSPs/unified_pay/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	mustRegisterValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")
	if cfg.JWTSecret != "" {
		v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	}

	registerAccountRoutes(v1, services.Ledger)
	registerPaymentRoutes(v1, services.Payments)
	registerRailRoutes(v1, services.Routing, services.Payments)
	registerFXRoutes(v1, cfg.ReferenceCurrency, fx.PopularSymbols())
}
