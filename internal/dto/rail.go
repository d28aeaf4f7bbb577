package dto

import (
	"github.com/SscSPs/unified_pay/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecommendRailRequest previews a routing decision without creating a transaction.
type RecommendRailRequest struct {
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency" binding:"omitempty,currency_code"`
	IsDomestic            *bool           `json:"isDomestic"`
	NeedInstant           *bool           `json:"needInstant"`
	PreferredMethod       *string         `json:"preferredMethod" binding:"omitempty,rail"`
	MerchantPrefersLowFee *bool           `json:"merchantPrefersLowFee"`
	AllowCrypto           *bool           `json:"allowCrypto"`
}

// RailRecommendationResponse is the winning rail together with every rail's score.
type RailRecommendationResponse struct {
	Recommended       domain.PaymentMethod `json:"recommended"`
	Amount            decimal.Decimal      `json:"amount"` // reference currency
	ReferenceCurrency string               `json:"referenceCurrency"`
	OriginalAmount    decimal.Decimal      `json:"originalAmount"`
	OriginalCurrency  string               `json:"originalCurrency"`
	FXRate            *decimal.Decimal     `json:"fxRate,omitempty"`
	Scores            []domain.RailScore   `json:"scores"`
}

// RailCatalogResponse lists the configured rails in catalog order.
type RailCatalogResponse struct {
	Rails []domain.PaymentOption `json:"rails"`
}

// SymbolsResponse lists the currency and asset codes offered to clients.
type SymbolsResponse struct {
	ReferenceCurrency string   `json:"referenceCurrency"`
	Symbols           []string `json:"symbols"`
}
