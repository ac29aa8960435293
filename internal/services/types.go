package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/budget"
)

// SyncOptions tunes a sync cycle. Zero values mean: fetch transactions from
// the configured look-back window, and use the period containing now as the
// budget-summary window.
type SyncOptions struct {
	Since       *time.Time
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

// SyncResult summarizes a completed sync cycle.
type SyncResult struct {
	Imported int            `json:"imported"`
	Aligned  bool           `json:"aligned"`
	Alerts   []budget.Alert `json:"alerts,omitempty"`
	Message  string         `json:"message"`
}

// SetupParams carries the connect flow's input.
type SetupParams struct {
	Token           string
	StartingBalance decimal.Decimal
	ImportStart     time.Time
	PeriodStart     time.Time
	PeriodEnd       time.Time
}

// PeriodSummary is the computed state of one budget period.
type PeriodSummary struct {
	PeriodKey        string                `json:"period_key"`
	Label            string                `json:"label"`
	Relation         budget.PeriodRelation `json:"relation"`
	Start            time.Time             `json:"start"`
	End              *time.Time            `json:"end,omitempty"`
	Open             bool                  `json:"open"`
	Income           decimal.Decimal       `json:"income"`
	Spent            decimal.Decimal       `json:"spent"`
	NetBudget        decimal.Decimal       `json:"net_budget"`
	BeginningBalance decimal.Decimal       `json:"beginning_balance"`
	EndingBalance    decimal.Decimal       `json:"ending_balance"`
	ProjectedEnd     decimal.Decimal       `json:"projected_end"`
	LifetimeSavings  decimal.Decimal       `json:"lifetime_savings"`
}

// TransactionView is a transaction resolved for display.
type TransactionView struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Payee        string          `json:"payee"`
	DisplayPayee string          `json:"display_payee"`
	Memo         string          `json:"memo"`
	Category     string          `json:"category"`
	IsPending    bool            `json:"is_pending"`
	IsManual     bool            `json:"is_manual"`
	OnPayday     bool            `json:"on_payday"`
}

// CategorySpend is one category's standing within a period.
type CategorySpend struct {
	Category string          `json:"category"`
	Kind     string          `json:"kind"`
	Spent    decimal.Decimal `json:"spent"`
	Budget   decimal.Decimal `json:"budget"`
	Progress decimal.Decimal `json:"progress"`
}

// WeeklyReport is the current week's actual totals.
type WeeklyReport struct {
	Start    time.Time       `json:"start"`
	End      time.Time       `json:"end"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}
