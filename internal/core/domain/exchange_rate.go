package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateQuote is one unit of From expressed in To.
type RateQuote struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
