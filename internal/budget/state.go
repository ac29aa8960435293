// Package budget implements the pay-period budget engine: the transaction
// store, paycheck detection, period resolution, sync reconciliation, balance
// aggregation, and budget alerts. The engine is pure and deterministic; all
// mutation goes through explicit transition functions followed by a single
// Recompute, and every computation takes the reference time as a parameter.
package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/models"
)

// State is the complete mutable budget state: the transaction set, the cached
// category map, user annotations, and the two-layer budget table. Derived
// values (paycheck dates, the confirmed-paycheck anchor, the default period
// start day) are refreshed by Recompute, which callers must invoke exactly
// once per logical mutation of the transaction set.
type State struct {
	Transactions []models.Transaction
	Categories   map[int]models.Category

	Hidden     map[string]struct{}
	Overrides  map[string]string // transaction id -> category name
	PayeeRules map[string]string // transaction id -> renamed payee

	DefaultBudgets map[string]decimal.Decimal
	PeriodBudgets  map[string]map[string]decimal.Decimal // period key -> category -> amount
	CategoryOrder  []string

	StartingBalance decimal.Decimal
	BudgetStartDay  int
	HistoryStart    *time.Time // earliest-import date; older transactions are ignored in balances
	AnchorPaycheck  *time.Time // last confirmed paycheck, persisted across data gaps
	AlertedKeys     map[string]struct{}

	paycheckDates []time.Time
}

// NewState returns an empty state with all maps initialized and the period
// start day defaulted to the first of the month.
func NewState() *State {
	return &State{
		Categories:     make(map[int]models.Category),
		Hidden:         make(map[string]struct{}),
		Overrides:      make(map[string]string),
		PayeeRules:     make(map[string]string),
		DefaultBudgets: make(map[string]decimal.Decimal),
		PeriodBudgets:  make(map[string]map[string]decimal.Decimal),
		AlertedKeys:    make(map[string]struct{}),
		BudgetStartDay: 1,
	}
}

// Recompute refreshes all derived state after a transaction-set mutation.
func (s *State) Recompute() {
	s.sortTransactions()
	s.detectPaychecks()
}

// sortTransactions orders the set descending by creation timestamp, then by
// transaction date, then by id, so display order and "most recent N" reads
// are deterministic across syncs.
func (s *State) sortTransactions() {
	sort.SliceStable(s.Transactions, func(i, j int) bool {
		a, b := s.Transactions[i], s.Transactions[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.ID > b.ID
	})
}

// PaycheckDates returns the detected paycheck dates in ascending order.
func (s *State) PaycheckDates() []time.Time {
	out := make([]time.Time, len(s.paycheckDates))
	copy(out, s.paycheckDates)
	return out
}

// CategoryFor resolves a transaction's effective category: an explicit
// per-transaction override wins, then the mapped ledger category, then
// Uncategorized.
func (s *State) CategoryFor(t models.Transaction) string {
	if override, ok := s.Overrides[t.ID]; ok {
		return override
	}
	if t.CategoryID != nil {
		if cat, ok := s.Categories[*t.CategoryID]; ok {
			return cat.Name
		}
	}
	return models.UncategorizedName
}

// IsIncomeCategory reports whether the named category is flagged as income by
// the ledger.
func (s *State) IsIncomeCategory(name string) bool {
	for _, cat := range s.Categories {
		if cat.Name == name {
			return cat.IsIncome
		}
	}
	return false
}

// KindOf classifies a category name as income, savings, or expense.
func (s *State) KindOf(name string) models.CategoryKind {
	return models.ClassifyCategory(name, s.IsIncomeCategory(name))
}

// ActiveTransactions returns the transaction set with hidden entries and
// pre-history entries filtered out.
func (s *State) ActiveTransactions() []models.Transaction {
	out := make([]models.Transaction, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		if _, hidden := s.Hidden[t.ID]; hidden {
			continue
		}
		if s.HistoryStart != nil && StartOfDay(t.Date).Before(StartOfDay(*s.HistoryStart)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TransactionByID returns the transaction with the given id, if present.
func (s *State) TransactionByID(id string) (models.Transaction, bool) {
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return models.Transaction{}, false
}

// ReplaceTransaction swaps in an updated transaction by id. Transactions are
// only mutated via full replacement.
func (s *State) ReplaceTransaction(updated models.Transaction) bool {
	for i, t := range s.Transactions {
		if t.ID == updated.ID {
			s.Transactions[i] = updated
			return true
		}
	}
	return false
}

// AddTransaction appends a transaction to the set. The caller is responsible
// for calling Recompute afterwards.
func (s *State) AddTransaction(t models.Transaction) {
	s.Transactions = append(s.Transactions, t)
}

// HideTransaction soft-deletes a transaction. The row stays in the set so a
// later sync can still supersede it.
func (s *State) HideTransaction(id string) {
	s.Hidden[id] = struct{}{}
}

// RefreshCategoryList ensures every cached category (plus Uncategorized) has
// a default budget entry and a slot in the category order. Returns true when
// anything changed, so callers can skip a pointless save.
func (s *State) RefreshCategoryList() bool {
	changed := false

	ensure := func(name string) {
		if _, ok := s.DefaultBudgets[name]; !ok {
			s.DefaultBudgets[name] = decimal.Zero
			changed = true
		}
		for _, existing := range s.CategoryOrder {
			if existing == name {
				return
			}
		}
		s.CategoryOrder = append(s.CategoryOrder, name)
		changed = true
	}

	names := make([]string, 0, len(s.Categories))
	for _, cat := range s.Categories {
		names = append(names, cat.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		ensure(name)
	}
	ensure(models.UncategorizedName)

	return changed
}

// BudgetFor returns the budgeted amount for a category in the period
// containing date: the period-specific override when one exists, otherwise
// the global default, otherwise zero.
func (s *State) BudgetFor(category string, date, now time.Time) decimal.Decimal {
	key := PeriodKey(s.PeriodStart(date, now))
	if overrides, ok := s.PeriodBudgets[key]; ok {
		if amount, ok := overrides[category]; ok {
			return amount
		}
	}
	if amount, ok := s.DefaultBudgets[category]; ok {
		return amount
	}
	return decimal.Zero
}

// SetBudget writes a budgeted amount to both the global default layer and the
// override layer for the period containing date, so the change applies to the
// period being viewed and to all future periods at once.
func (s *State) SetBudget(category string, amount decimal.Decimal, date, now time.Time) {
	s.DefaultBudgets[category] = amount

	key := PeriodKey(s.PeriodStart(date, now))
	if s.PeriodBudgets[key] == nil {
		s.PeriodBudgets[key] = make(map[string]decimal.Decimal)
	}
	s.PeriodBudgets[key][category] = amount
}

// AddCategory registers a local-only category with a default budget.
func (s *State) AddCategory(name string, amount decimal.Decimal) {
	s.DefaultBudgets[name] = amount
	for _, existing := range s.CategoryOrder {
		if existing == name {
			return
		}
	}
	s.CategoryOrder = append(s.CategoryOrder, name)
}

// RemoveCategory drops a category from the order and deletes its default
// budget entry. Transactions keep their category; they resolve through the
// override map or the ledger cache as before.
func (s *State) RemoveCategory(name string) bool {
	for i, existing := range s.CategoryOrder {
		if existing == name {
			s.CategoryOrder = append(s.CategoryOrder[:i], s.CategoryOrder[i+1:]...)
			delete(s.DefaultBudgets, name)
			return true
		}
	}
	return false
}

// MoveCategory repositions a category within the persisted order.
func (s *State) MoveCategory(name string, to int) bool {
	from := -1
	for i, existing := range s.CategoryOrder {
		if existing == name {
			from = i
			break
		}
	}
	if from < 0 {
		return false
	}
	if to < 0 {
		to = 0
	}
	if to >= len(s.CategoryOrder) {
		to = len(s.CategoryOrder) - 1
	}
	order := append([]string{}, s.CategoryOrder...)
	order = append(order[:from], order[from+1:]...)
	order = append(order[:to], append([]string{name}, order[to:]...)...)
	s.CategoryOrder = order
	return true
}
