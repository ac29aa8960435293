// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("money_amount", validateMoneyAmount)
		_ = v.RegisterValidation("date_ymd", validateDateYMD)
		_ = v.RegisterValidation("sort_option", validateSortOption)
	}
}

// validateMoneyAmount accepts decimal strings with at most two fractional
// digits, matching cent precision.
func validateMoneyAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.Exponent() >= -2
}

func validateDateYMD(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateSortOption(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "total_spending", "percent_spending", "alphabetical":
		return true
	}
	return false
}
