package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/SscSPs/unified_pay/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to ledger accounts.
type accountHandler struct {
	ledger portssvc.LedgerAccountSvc
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(ledger portssvc.LedgerAccountSvc) *accountHandler {
	return &accountHandler{ledger: ledger}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, ledger portssvc.LedgerAccountSvc) {
	h := newAccountHandler(ledger)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.DELETE("/:accountID", h.closeAccount)
	}
}

// openAccount handles POST /accounts: open a ledger account.
func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.LoggerOrDefault(c.Request.Context())
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "OpenAccount request")
		return
	}

	account, err := h.ledger.OpenAccount(c.Request.Context(), req.OwnerID, req.InitialBalance)
	if err != nil {
		respondError(c, logger, err, "open account")
		return
	}

	logger.Info("Account opened via API", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts handles GET /accounts: list ledger accounts.
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.LoggerOrDefault(c.Request.Context())
	accounts, err := h.ledger.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.LoggerOrDefault(c.Request.Context())
	accountID := c.Param("accountID")

	account, err := h.ledger.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "get account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// closeAccount removes the account. Payments that still reference it fail at settlement.
func (h *accountHandler) closeAccount(c *gin.Context) {
	logger := middleware.LoggerOrDefault(c.Request.Context())
	accountID := c.Param("accountID")

	if err := h.ledger.CloseAccount(c.Request.Context(), accountID); err != nil {
		respondError(c, logger.With(slog.String("account_id", accountID)), err, "close account")
		return
	}
	c.Status(http.StatusNoContent)
}
