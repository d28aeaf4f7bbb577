package domain

import (
	"github.com/shopspring/decimal"
)

// Account holds a balance denominated in the ledger's reference currency.
// Balance is only ever changed by the ledger.
type Account struct {
	AccountID string          `json:"accountID"`
	OwnerID   string          `json:"ownerID"` // weak reference to the owning user
	Balance   decimal.Decimal `json:"balance"`
	AuditFields
}
