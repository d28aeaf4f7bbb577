package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateSource supplies conversion factors between currency or asset codes.
type RateSource interface {
	// GetRate returns how many units of toCode one unit of fromCode buys.
	// Failures wrap apperrors.ErrRateUnavailable or apperrors.ErrUnsupportedCurrency.
	GetRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error)
}
