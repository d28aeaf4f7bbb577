package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/SscSPs/unified_pay/internal/middleware"
	"github.com/gin-gonic/gin"
)

type railHandler struct {
	routing  portssvc.RailExplainer
	payments portssvc.PaymentInitiatorSvc
}

func registerRailRoutes(rg *gin.RouterGroup, routing portssvc.RailExplainer, payments portssvc.PaymentInitiatorSvc) {
	h := &railHandler{routing: routing, payments: payments}

	rails := rg.Group("/rails")
	{
		rails.GET("", h.listRails)
		rails.POST("/recommend", h.recommendRail)
	}
}

func (h *railHandler) listRails(c *gin.Context) {
	c.JSON(http.StatusOK, dto.RailCatalogResponse{Rails: h.routing.Catalog()})
}

// recommendRail handles POST /rails/recommend: preview a routing decision.
// Scores every rail for the given context without creating a transaction.
func (h *railHandler) recommendRail(c *gin.Context) {
	logger := middleware.LoggerOrDefault(c.Request.Context())
	var req dto.RecommendRailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "RecommendRail request")
		return
	}

	resp, err := h.payments.Preview(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "recommend rail")
		return
	}
	c.JSON(http.StatusOK, resp)
}
