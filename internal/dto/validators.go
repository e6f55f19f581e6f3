package dto

import (
	"github.com/SscSPs/temple_ledger/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators adds the ledger's custom tags to v:
//   - account_type: one of the five account types
//   - decimal2: a non-negative decimal with at most two decimal places
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("account_type", validateAccountType); err != nil {
		return err
	}
	return v.RegisterValidation("decimal2", validateDecimal2)
}

func validateAccountType(fl validator.FieldLevel) bool {
	switch t := fl.Field().Interface().(type) {
	case domain.AccountType:
		return t.IsValid()
	case string:
		return domain.AccountType(t).IsValid()
	}
	return false
}

func validateDecimal2(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return !d.IsNegative() && d.Equal(d.Round(2))
}
