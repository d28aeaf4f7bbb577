package handlers

import (
	"regexp"
	"sync"

	"github.com/SscSPs/unified_pay/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3,5}$`)
	validatorsOnce      sync.Once
)

// mustRegisterValidators adds the `rail` and `currency_code` tags to gin's validator.
func mustRegisterValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("rail", validateRail); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("currency_code", validateCurrencyCode); err != nil {
			panic(err)
		}
	})
}

func validateRail(fl validator.FieldLevel) bool {
	_, err := domain.ParsePaymentMethod(fl.Field().String())
	return err == nil
}

// validateCurrencyCode accepts ISO codes and the short asset tickers (BTC, USDT).
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return currencyCodePattern.MatchString(fl.Field().String())
}
