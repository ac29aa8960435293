package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date builds a UTC-midnight date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Money parses a decimal literal, panicking on malformed input so fixture
// mistakes fail loudly.
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Transaction builds a posted transaction with a unique id.
func Transaction(payee, amount string, date time.Time) models.Transaction {
	return models.Transaction{
		ID:        fmt.Sprintf("txn-%d", nextID()),
		Date:      date,
		Amount:    Money(amount),
		Payee:     payee,
		CreatedAt: date,
	}
}

// PendingTransaction builds a pending transaction carrying an external id.
func PendingTransaction(payee, amount string, date time.Time, externalID string) models.Transaction {
	txn := Transaction(payee, amount, date)
	txn.IsPending = true
	txn.ExternalID = &externalID
	return txn
}

// Category builds a ledger category with a unique id.
func Category(name string, isIncome bool) models.Category {
	return models.Category{
		ID:       int(nextID()),
		Name:     name,
		IsIncome: isIncome,
	}
}
