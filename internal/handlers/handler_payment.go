package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/SscSPs/unified_pay/internal/dto"
	"github.com/SscSPs/unified_pay/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles HTTP requests related to payments.
type paymentHandler struct {
	payments portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(payments portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{payments: payments}
}

// registerPaymentRoutes registers routes related to payments.
func registerPaymentRoutes(rg *gin.RouterGroup, payments portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(payments)

	group := rg.Group("/payments")
	{
		group.POST("", h.initiatePayment)
		group.GET("", h.listPayments)
		group.GET("/:transactionID", h.getPayment)
		group.POST("/:transactionID/settle", h.settlePayment)
		group.POST("/:transactionID/fail", h.failPayment)
	}
}

// initiatePayment handles POST /payments: initiate a payment.
// Validates, converts and routes a payment. Balances change only on settlement.
func (h *paymentHandler) initiatePayment(c *gin.Context) {
	logger := middleware.LoggerOrDefault(c.Request.Context())
	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "InitiatePayment request")
		return
	}

	if principal, ok := middleware.GetPrincipalFromContext(c); ok {
		if req.Metadata == nil {
			req.Metadata = make(map[string]string, 1)
		}
		req.Metadata["initiated_by"] = principal
	}

	txn, err := h.payments.Initiate(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "initiate payment")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// listPayments handles GET /payments: list payments, newest first.
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.LoggerOrDefault(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "ListPayments query")
		return
	}

	page, err := h.payments.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "list payments")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *paymentHandler) getPayment(c *gin.Context) {
	transactionID := c.Param("transactionID")
	logger := middleware.LoggerOrDefault(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	txn, err := h.payments.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, logger, err, "get payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// settlePayment handles POST /payments/:transactionID/settle: settle an initiated payment.
// Returns the terminal transaction. A business failure is reported as status FAILED with a reason.
func (h *paymentHandler) settlePayment(c *gin.Context) {
	transactionID := c.Param("transactionID")
	logger := middleware.LoggerOrDefault(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	txn, err := h.payments.Settle(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, logger, err, "settle payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *paymentHandler) failPayment(c *gin.Context) {
	transactionID := c.Param("transactionID")
	logger := middleware.LoggerOrDefault(c.Request.Context()).With(slog.String("transaction_id", transactionID))

	var req dto.FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "FailPayment request")
		return
	}

	txn, err := h.payments.Fail(c.Request.Context(), transactionID, req.Reason)
	if err != nil {
		respondError(c, logger, err, "fail payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
