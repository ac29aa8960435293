package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/models"
)

// LedgerClient is the remote ledger surface the budget service depends on.
// The production implementation lives in internal/ledger; tests substitute a
// fake.
type LedgerClient interface {
	// SetToken replaces the API credential used for subsequent calls.
	SetToken(token string)

	// FetchCategories returns the full category list. Failure aborts the
	// sync cycle.
	FetchCategories(ctx context.Context) ([]models.Category, error)

	// FetchBudgetSummary reports whether [start, end] lines up with the
	// ledger's budgeting period, and budgeted amounts per category id
	// when it does.
	FetchBudgetSummary(ctx context.Context, start, end time.Time) (aligned bool, budgeted map[int]decimal.Decimal, err error)

	// FetchTransactions returns transactions dated within [since, until].
	// A non-empty errors slice is a partial-failure signal distinct from
	// a transport error; the caller must not mutate the store.
	FetchTransactions(ctx context.Context, since, until time.Time) ([]models.Transaction, []string, error)

	// UpdateTransactionPayee pushes a payee rename upstream.
	UpdateTransactionPayee(ctx context.Context, transactionID, payee string) error

	// TriggerAccountSync asks the ledger to refresh its bank connections.
	// Best-effort; failure only affects the freshness of the next fetch.
	TriggerAccountSync(ctx context.Context) error
}
