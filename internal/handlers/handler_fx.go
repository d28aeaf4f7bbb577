package handlers

import (
	"net/http"

	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/gin-gonic/gin"
)

// registerFXRoutes exposes the currency and asset codes offered to clients.
func registerFXRoutes(rg *gin.RouterGroup, referenceCurrency string, symbols []string) {
	resp := dto.SymbolsResponse{ReferenceCurrency: referenceCurrency, Symbols: symbols}

	fxGroup := rg.Group("/fx")
	fxGroup.GET("/symbols", func(c *gin.Context) {
		c.JSON(http.StatusOK, resp)
	})
}
