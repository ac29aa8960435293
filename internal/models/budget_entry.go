package models

import "github.com/shopspring/decimal"

// DefaultPeriodKey marks budget entries in the global default layer.
// Period-specific overrides carry the canonical period start date instead.
const DefaultPeriodKey = ""

// BudgetEntry is one budgeted amount for a category, either in the default
// layer (PeriodKey == DefaultPeriodKey) or as an override for a single period.
type BudgetEntry struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	PeriodKey string          `gorm:"uniqueIndex:idx_budget_period_category;not null;default:''" json:"period_key"`
	Category  string          `gorm:"uniqueIndex:idx_budget_period_category;not null" json:"category"`
	Amount    decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
}
