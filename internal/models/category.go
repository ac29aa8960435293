package models

import "strings"

// UncategorizedName is the effective category for transactions with no mapped
// or overridden category.
const UncategorizedName = "Uncategorized"

// Category is a spending category owned by the remote ledger and cached
// locally. IDs are assigned remotely.
type Category struct {
	ID                int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name              string `gorm:"not null" json:"name"`
	IsIncome          bool   `json:"is_income"`
	ExcludeFromBudget bool   `json:"exclude_from_budget"`
	ParentID          *int   `json:"parent_id,omitempty"`
}

// CategoryKind classifies a category for aggregation purposes.
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "income"
	CategoryKindSavings CategoryKind = "savings"
	CategoryKindExpense CategoryKind = "expense"
)

// ClassifyCategory maps a resolved category name to its kind. Income comes
// from the ledger's is_income flag; savings is recognized by a
// case-insensitive substring of the display name, matching how the categories
// are labeled upstream. This is the single place that rule lives.
func ClassifyCategory(name string, isIncome bool) CategoryKind {
	if isIncome {
		return CategoryKindIncome
	}
	if strings.Contains(strings.ToLower(name), "savings") {
		return CategoryKindSavings
	}
	return CategoryKindExpense
}
