package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SettlementWriter commits the effects of a successful settlement.
type SettlementWriter interface {
	// ApplySettlement persists both new balances and the terminal transaction record atomically:
	// either all three are written or none is.
	ApplySettlement(ctx context.Context, fromAccountID string, fromBalance decimal.Decimal, toAccountID string, toBalance decimal.Decimal, updatedAt time.Time, txn domain.Transaction) error
}

// SettlementRepositoryFacade combines all settlement-related repository interfaces.
type SettlementRepositoryFacade interface {
	SettlementWriter
}
