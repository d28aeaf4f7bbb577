package services

import (
	"math"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	portssvc "github.com/SscSPs/unified_pay/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Scoring weights.
const (
	preferredMethodBonus = 3.0
	lowFeeWeight         = 1.2
	feeWeight            = 0.5
	instantSpeedWeight   = 0.05
	speedWeight          = 0.02
	reliabilityWeight    = 2.0
	largeUPIPenalty      = 2.0
	largeBankBonus       = 1.5
)

var (
	upiPenaltyThreshold = decimal.NewFromInt(100000)
	bankBonusThreshold  = decimal.NewFromInt(50000)
)

// FallbackMethod is returned when no rail in the catalog is eligible.
const FallbackMethod = domain.BankTransfer

// routingService is a pure function of the payment context and a read-only catalog.
// It is safe for concurrent use.
type routingService struct {
	catalog []domain.PaymentOption
}

// NewRoutingService creates a routing engine over catalog. An empty catalog
// falls back to DefaultCatalog.
func NewRoutingService(catalog []domain.PaymentOption) portssvc.RoutingSvcFacade {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	owned := make([]domain.PaymentOption, len(catalog))
	copy(owned, catalog)
	return &routingService{catalog: owned}
}

var _ portssvc.RoutingSvcFacade = (*routingService)(nil)

// DefaultCatalog returns the built-in rail catalog in routing order.
func DefaultCatalog() []domain.PaymentOption {
	maxUPI := decimal.NewFromInt(200000)
	maxWallet := decimal.NewFromInt(50000)
	return []domain.PaymentOption{
		{
			Method:               domain.UPI,
			MinAmount:            decimal.NewFromInt(1),
			MaxAmount:            &maxUPI,
			DomesticOnly:         true,
			AvgFeePercent:        0,
			AvgSettlementMinutes: 1,
			ReliabilityScore:     0.95,
			SupportsRefund:       true,
		},
		{
			Method:                domain.Card,
			MinAmount:             decimal.NewFromInt(10),
			SupportsInternational: true,
			AvgFeePercent:         2.0,
			AvgSettlementMinutes:  1,
			ReliabilityScore:      0.9,
			SupportsRefund:        true,
		},
		{
			Method:               domain.BankTransfer,
			MinAmount:            decimal.NewFromInt(100),
			DomesticOnly:         true,
			AvgFeePercent:        0.25,
			AvgSettlementMinutes: 30,
			ReliabilityScore:     0.98,
			SupportsRefund:       true,
		},
		{
			Method:               domain.NetBanking,
			MinAmount:            decimal.NewFromInt(100),
			DomesticOnly:         true,
			AvgFeePercent:        1.0,
			AvgSettlementMinutes: 5,
			ReliabilityScore:     0.92,
			SupportsRefund:       true,
		},
		{
			Method:               domain.Wallet,
			MinAmount:            decimal.NewFromInt(1),
			MaxAmount:            &maxWallet,
			DomesticOnly:         true,
			AvgFeePercent:        1.5,
			AvgSettlementMinutes: 1,
			ReliabilityScore:     0.85,
			SupportsRefund:       true,
		},
		{
			Method:                domain.Crypto,
			MinAmount:             decimal.NewFromInt(100),
			SupportsInternational: true,
			AvgFeePercent:         0.5,
			AvgSettlementMinutes:  30,
			ReliabilityScore:      0.7,
			SupportsRefund:        false,
		},
	}
}

// IsEligible reports whether option can carry a payment described by pctx.
func IsEligible(option domain.PaymentOption, pctx domain.PaymentContext) bool {
	if pctx.Amount.LessThan(option.MinAmount) {
		return false
	}
	if option.MaxAmount != nil && pctx.Amount.GreaterThan(*option.MaxAmount) {
		return false
	}
	if !pctx.IsDomestic && !option.SupportsInternational {
		return false
	}
	if option.Method == domain.Crypto && !pctx.AllowCrypto {
		return false
	}
	return true
}

// Score computes the weighted desirability of option for pctx. Higher is better.
func Score(option domain.PaymentOption, pctx domain.PaymentContext) float64 {
	score := 0.0

	if pctx.PreferredMethod != nil && *pctx.PreferredMethod == option.Method {
		score += preferredMethodBonus
	}

	if pctx.MerchantPrefersLowFee {
		score -= option.AvgFeePercent * lowFeeWeight
	} else {
		score -= option.AvgFeePercent * feeWeight
	}

	minutes := math.Max(1, float64(option.AvgSettlementMinutes))
	if pctx.NeedInstant {
		score -= minutes * instantSpeedWeight
	} else {
		score -= minutes * speedWeight
	}

	score += option.ReliabilityScore * reliabilityWeight

	if option.Method == domain.UPI && pctx.Amount.GreaterThan(upiPenaltyThreshold) {
		score -= largeUPIPenalty
	}
	if option.Method.IsBankRail() && pctx.Amount.GreaterThanOrEqual(bankBonusThreshold) {
		score += largeBankBonus
	}

	return score
}

func (s *routingService) Recommend(pctx domain.PaymentContext) domain.PaymentMethod {
	best := FallbackMethod
	bestScore := math.Inf(-1)
	found := false

	for _, option := range s.catalog {
		if !IsEligible(option, pctx) {
			continue
		}
		// strict comparison keeps the first rail in catalog order on ties
		if sc := Score(option, pctx); !found || sc > bestScore {
			best, bestScore, found = option.Method, sc, true
		}
	}
	return best
}

func (s *routingService) Explain(pctx domain.PaymentContext) []domain.RailScore {
	out := make([]domain.RailScore, 0, len(s.catalog))
	for _, option := range s.catalog {
		row := domain.RailScore{Method: option.Method, Eligible: IsEligible(option, pctx)}
		if row.Eligible {
			row.Score = Score(option, pctx)
		}
		out = append(out, row)
	}
	return out
}

func (s *routingService) Catalog() []domain.PaymentOption {
	out := make([]domain.PaymentOption, len(s.catalog))
	copy(out, s.catalog)
	return out
}
