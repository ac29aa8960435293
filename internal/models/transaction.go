package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/uuid"
)

// Transaction represents a bank transaction synced from the remote ledger or
// entered by hand. Negative amounts are expenses, positive amounts income.
// Rows are only ever replaced whole; partial field updates would leave the
// derived caches out of step with the stored row.
type Transaction struct {
	ID                   string          `gorm:"primaryKey" json:"id"`
	Date                 time.Time       `gorm:"not null;index" json:"date"`
	Amount               decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Payee                string          `json:"payee"`
	Memo                 string          `json:"memo"`
	CategoryID           *int            `json:"category_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	IsPending            bool            `json:"is_pending"`
	ExternalID           *string         `gorm:"index" json:"external_id,omitempty"`
	SupersedesExternalID *string         `json:"supersedes_external_id,omitempty"`
}

// IsManual reports whether the transaction was created locally.
func (t *Transaction) IsManual() bool {
	return uuid.IsManualID(t.ID)
}

// AmountKey returns the amount rounded to 2 decimal places with banker's
// rounding, as a canonical string. Used to match manual entries against
// incoming real transactions.
func (t *Transaction) AmountKey() string {
	return t.Amount.RoundBank(2).String()
}

var (
	cardPrefixRe   = regexp.MustCompile(`(?i)^(CHECKCARD|PURCHASE|MOBILE PURCHASE) \d+ `)
	confSuffixRe   = regexp.MustCompile(`(?i)[:;]?\s*Conf#.*`)
	maskedDigitsRe = regexp.MustCompile(`\s?XXXXX[A-Z0-9]*`)
)

// DisplayPayee returns the payee stripped of bank-statement noise: card
// prefixes, ACH "DES" tails, confirmation numbers, and masked account digits.
func (t *Transaction) DisplayPayee() string {
	name := t.Payee
	if name == "" {
		name = "Unknown Transaction"
	}
	name = cardPrefixRe.ReplaceAllString(name, "")
	if i := strings.Index(name, " DES"); i >= 0 {
		name = name[:i]
	}
	name = confSuffixRe.ReplaceAllString(name, "")
	name = maskedDigitsRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// WithPayee returns a copy of the transaction with a new payee.
func (t Transaction) WithPayee(payee string) Transaction {
	t.Payee = payee
	return t
}
