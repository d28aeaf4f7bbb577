package models

import (
	"github.com/shopspring/decimal"
)

// Account is the persisted form of a ledger account.
type Account struct {
	AccountID string          `db:"account_id"`
	OwnerID   string          `db:"owner_id"`
	Balance   decimal.Decimal `db:"balance"` // reference currency
	AuditFields
}
