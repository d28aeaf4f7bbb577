package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies a settlement rail.
type PaymentMethod string

const (
	UPI          PaymentMethod = "upi"
	Card         PaymentMethod = "card"
	BankTransfer PaymentMethod = "bank_transfer"
	NetBanking   PaymentMethod = "netbanking"
	Wallet       PaymentMethod = "wallet"
	Crypto       PaymentMethod = "crypto"
	Cash         PaymentMethod = "cash" // offline, never in the default catalog
)

var knownMethods = map[PaymentMethod]struct{}{
	UPI: {}, Card: {}, BankTransfer: {}, NetBanking: {}, Wallet: {}, Crypto: {}, Cash: {},
}

// IsValid reports whether m is one of the known rails.
func (m PaymentMethod) IsValid() bool {
	_, ok := knownMethods[m]
	return ok
}

// IsBankRail reports whether m settles through the banking network.
func (m PaymentMethod) IsBankRail() bool {
	return m == BankTransfer || m == NetBanking
}

// ParsePaymentMethod accepts canonical values ("bank_transfer") as well as display
// names ("Bank Transfer", "NetBanking"), case-insensitively.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	if normalized == "net_banking" {
		normalized = string(NetBanking)
	}

	m := PaymentMethod(normalized)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownPaymentMethod, raw)
	}
	return m, nil
}

// PaymentOption describes a rail in the static catalog.
type PaymentOption struct {
	Method                PaymentMethod    `json:"method"`
	MinAmount             decimal.Decimal  `json:"minAmount"`
	MaxAmount             *decimal.Decimal `json:"maxAmount,omitempty"`
	DomesticOnly          bool             `json:"domesticOnly"`
	SupportsInternational bool             `json:"supportsInternational"`
	AvgFeePercent         float64          `json:"avgFeePercent"`
	AvgSettlementMinutes  int              `json:"avgSettlementMinutes"`
	ReliabilityScore      float64          `json:"reliabilityScore"`
	SupportsRefund        bool             `json:"supportsRefund"`
}

// PaymentContext is the per-decision routing input. Amount is in the reference currency.
type PaymentContext struct {
	Amount                decimal.Decimal
	Currency              string
	IsDomestic            bool
	NeedInstant           bool
	PreferredMethod       *PaymentMethod
	MerchantPrefersLowFee bool
	AllowCrypto           bool
}

// RailScore is one row of a routing explanation.
type RailScore struct {
	Method   PaymentMethod `json:"method"`
	Eligible bool          `json:"eligible"`
	Score    float64       `json:"score"`
}
