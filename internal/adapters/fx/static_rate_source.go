package fx

import (
	"context"
	"fmt"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

const inverseRatePrecision = 12

// StaticRateSource serves rates from a fixed table keyed "FROM_TO".
// A missing pair is answered from its inverse when that is present.
type StaticRateSource struct {
	rates map[string]decimal.Decimal
}

// NewStaticRateSource copies rates into a new source.
func NewStaticRateSource(rates map[string]decimal.Decimal) *StaticRateSource {
	owned := make(map[string]decimal.Decimal, len(rates))
	for pair, rate := range rates {
		owned[normalize(pair)] = rate
	}
	return &StaticRateSource{rates: owned}
}

var _ portssvc.RateSource = (*StaticRateSource)(nil)

func (s *StaticRateSource) GetRate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	from, to := normalize(fromCode), normalize(toCode)
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if err := ctx.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrRateUnavailable, err)
	}

	if rate, ok := s.rates[from+"_"+to]; ok {
		return rate, nil
	}
	if inverse, ok := s.rates[to+"_"+from]; ok && inverse.IsPositive() {
		return decimal.NewFromInt(1).DivRound(inverse, inverseRatePrecision), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s to %s", apperrors.ErrUnsupportedCurrency, from, to)
}
