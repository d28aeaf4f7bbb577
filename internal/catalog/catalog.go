// Package catalog loads the rail catalog from YAML.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/SscSPs/unified_pay/internal/apperrors"
	"github.com/SscSPs/unified_pay/internal/core/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a rail catalog. Rail order is routing order.
type File struct {
	Rails []Rail `yaml:"rails"`
}

// Rail is one catalog entry.
type Rail struct {
	Method                string   `yaml:"method"`
	MinAmount             float64  `yaml:"min_amount"`
	MaxAmount             *float64 `yaml:"max_amount"`
	DomesticOnly          bool     `yaml:"domestic_only"`
	SupportsInternational bool     `yaml:"supports_international"`
	AvgFeePercent         float64  `yaml:"avg_fee_percent"`
	AvgSettlementMinutes  int      `yaml:"avg_settlement_minutes"`
	ReliabilityScore      float64  `yaml:"reliability_score"`
	SupportsRefund        bool     `yaml:"supports_refund"`
}

// Load reads and validates the catalog at path.
func Load(path string) ([]domain.PaymentOption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rail catalog %s: %w", path, err)
	}
	options, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rail catalog %s: %w", path, err)
	}
	return options, nil
}

// Parse decodes and validates a YAML catalog. All problems are reported together.
func Parse(data []byte) ([]domain.PaymentOption, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: invalid yaml: %v", apperrors.ErrValidation, err)
	}
	if len(file.Rails) == 0 {
		return nil, fmt.Errorf("%w: catalog has no rails", apperrors.ErrValidation)
	}

	var problems []error
	seen := make(map[domain.PaymentMethod]int, len(file.Rails))
	options := make([]domain.PaymentOption, 0, len(file.Rails))

	for i, rail := range file.Rails {
		opt, errs := rail.toOption(i)
		problems = append(problems, errs...)
		if opt.Method == "" {
			continue
		}
		if first, dup := seen[opt.Method]; dup {
			problems = append(problems, fmt.Errorf("rails[%d]: %s already defined at rails[%d]", i, opt.Method, first))
			continue
		}
		seen[opt.Method] = i
		options = append(options, opt)
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, errors.Join(problems...))
	}
	return options, nil
}

func (r Rail) toOption(index int) (domain.PaymentOption, []error) {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("rails[%d]: "+format, append([]any{index}, args...)...))
	}

	method, err := domain.ParsePaymentMethod(r.Method)
	if err != nil {
		fail("%v", err)
	}
	if r.MinAmount < 0 {
		fail("min_amount %v is negative", r.MinAmount)
	}
	if r.MaxAmount != nil && *r.MaxAmount < r.MinAmount {
		fail("max_amount %v is below min_amount %v", *r.MaxAmount, r.MinAmount)
	}
	if r.AvgFeePercent < 0 {
		fail("avg_fee_percent %v is negative", r.AvgFeePercent)
	}
	if r.AvgSettlementMinutes < 0 {
		fail("avg_settlement_minutes %d is negative", r.AvgSettlementMinutes)
	}
	if r.ReliabilityScore < 0 || r.ReliabilityScore > 1 {
		fail("reliability_score %v is outside [0,1]", r.ReliabilityScore)
	}

	opt := domain.PaymentOption{
		Method:                method,
		MinAmount:             decimal.NewFromFloat(r.MinAmount),
		DomesticOnly:          r.DomesticOnly,
		SupportsInternational: r.SupportsInternational,
		AvgFeePercent:         r.AvgFeePercent,
		AvgSettlementMinutes:  r.AvgSettlementMinutes,
		ReliabilityScore:      r.ReliabilityScore,
		SupportsRefund:        r.SupportsRefund,
	}
	if r.MaxAmount != nil {
		maxAmount := decimal.NewFromFloat(*r.MaxAmount)
		opt.MaxAmount = &maxAmount
	}
	return opt, errs
}
