package budget

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/models"
)

// All monetary aggregation uses exact decimal arithmetic; repeated
// aggregation over the same transactions must never drift.

// periodTransactions returns the active transactions falling inside a period.
func (s *State) periodTransactions(p Period) []models.Transaction {
	var out []models.Transaction
	for _, t := range s.ActiveTransactions() {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// Spent sums the magnitudes of the category's expense transactions in the
// period containing date.
func (s *State) Spent(category string, date, now time.Time) decimal.Decimal {
	p := s.PeriodBounds(date, now)
	total := decimal.Zero
	for _, t := range s.periodTransactions(p) {
		if t.Amount.IsNegative() && s.CategoryFor(t) == category {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

// CategoryProgress returns spent/budget for the category in the period
// containing date, or zero when no budget is set.
func (s *State) CategoryProgress(category string, date, now time.Time) decimal.Decimal {
	budget := s.BudgetFor(category, date, now)
	if !budget.IsPositive() {
		return decimal.Zero
	}
	return s.Spent(category, date, now).Div(budget)
}

// Income returns the period's income: actual positive transactions for past
// and current periods, budgeted amounts of income categories for future ones.
func (s *State) Income(date, now time.Time) decimal.Decimal {
	if s.RelationOf(date, now) == PeriodFuture {
		total := decimal.Zero
		for _, name := range s.CategoryOrder {
			if s.KindOf(name) == models.CategoryKindIncome {
				total = total.Add(s.BudgetFor(name, date, now))
			}
		}
		return total
	}

	p := s.PeriodBounds(date, now)
	total := decimal.Zero
	for _, t := range s.periodTransactions(p) {
		if t.Amount.IsPositive() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// Expenses returns the period's spending, excluding income and savings
// categories: actual expense transactions for past and current periods,
// budgeted amounts for future ones.
func (s *State) Expenses(date, now time.Time) decimal.Decimal {
	if s.RelationOf(date, now) == PeriodFuture {
		total := decimal.Zero
		for _, name := range s.CategoryOrder {
			if s.KindOf(name) == models.CategoryKindExpense {
				total = total.Add(s.BudgetFor(name, date, now))
			}
		}
		return total
	}

	p := s.PeriodBounds(date, now)
	total := decimal.Zero
	for _, t := range s.periodTransactions(p) {
		if !t.Amount.IsNegative() {
			continue
		}
		if s.KindOf(s.CategoryFor(t)) != models.CategoryKindExpense {
			continue
		}
		total = total.Add(t.Amount.Abs())
	}
	return total
}

// NetBudget returns budgeted income minus all budgeted outflow (savings
// included) for the period containing date.
func (s *State) NetBudget(date, now time.Time) decimal.Decimal {
	net := decimal.Zero
	for _, name := range s.CategoryOrder {
		amount := s.BudgetFor(name, date, now)
		if s.KindOf(name) == models.CategoryKindIncome {
			net = net.Add(amount)
		} else {
			net = net.Sub(amount)
		}
	}
	return net
}

// BeginningBalance returns the balance entering the period containing date.
// For past and current periods it is the starting balance plus every active
// transaction strictly before the period start. For future periods it chains
// the current period's projected end through the net budget of every whole
// month in between.
func (s *State) BeginningBalance(date, now time.Time) decimal.Decimal {
	targetStart := s.PeriodStart(date, now)
	currentStart := s.PeriodStart(now, now)

	if targetStart.After(currentStart) {
		accumulated := s.ProjectedEnd(now, now)
		pointer := addMonths(currentStart, 1)
		for s.PeriodStart(pointer, now).Before(targetStart) {
			accumulated = accumulated.Add(s.NetBudget(pointer, now))
			pointer = addMonths(pointer, 1)
		}
		return accumulated
	}

	balance := s.StartingBalance
	for _, t := range s.ActiveTransactions() {
		if StartOfDay(t.Date).Before(targetStart) {
			balance = balance.Add(t.Amount)
		}
	}
	return balance
}

// EndingBalance returns the balance leaving the period containing date:
// beginning plus net budget for future periods, beginning plus actual period
// transactions otherwise.
func (s *State) EndingBalance(date, now time.Time) decimal.Decimal {
	beginning := s.BeginningBalance(date, now)
	if s.RelationOf(date, now) == PeriodFuture {
		return beginning.Add(s.NetBudget(date, now))
	}

	p := s.PeriodBounds(date, now)
	total := decimal.Zero
	for _, t := range s.periodTransactions(p) {
		total = total.Add(t.Amount)
	}
	return beginning.Add(total)
}

// ProjectedEnd estimates the balance at the end of the period containing
// date, assuming the rest of the budget is honored: the actual running
// balance up to min(now, period end), plus each category's unspent budget
// remainder applied with sign. Zero-budget categories contribute nothing. An
// open-ended period gets no budget adjustment; its projection is simply the
// running balance.
func (s *State) ProjectedEnd(date, now time.Time) decimal.Decimal {
	p := s.PeriodBounds(date, now)

	reference := StartOfDay(now)
	if !p.Open && p.End.Before(reference) {
		reference = p.End
	}

	actual := s.StartingBalance
	for _, t := range s.ActiveTransactions() {
		if !StartOfDay(t.Date).After(reference) {
			actual = actual.Add(t.Amount)
		}
	}

	if p.Open {
		return actual
	}

	periodTxns := s.periodTransactions(p)
	adjustment := decimal.Zero
	for _, name := range s.CategoryOrder {
		budget := s.BudgetFor(name, date, now)
		if budget.IsZero() {
			continue
		}

		spent := decimal.Zero
		for _, t := range periodTxns {
			if s.CategoryFor(t) == name {
				spent = spent.Add(t.Amount)
			}
		}
		spent = spent.Abs()

		if budget.GreaterThan(spent) {
			remainder := budget.Sub(spent)
			if s.KindOf(name) == models.CategoryKindIncome {
				adjustment = adjustment.Add(remainder)
			} else {
				adjustment = adjustment.Sub(remainder)
			}
		}
	}
	return actual.Add(adjustment)
}

// LifetimeSavings sums every savings-category transaction ever recorded; for
// a future period it extends the actual total with the budgeted savings of
// each intervening month.
func (s *State) LifetimeSavings(date, now time.Time) decimal.Decimal {
	actual := decimal.Zero
	for _, t := range s.ActiveTransactions() {
		if s.KindOf(s.CategoryFor(t)) == models.CategoryKindSavings {
			actual = actual.Add(t.Amount)
		}
	}
	actual = actual.Abs()

	targetStart := s.PeriodStart(date, now)
	currentStart := s.PeriodStart(now, now)
	if !targetStart.After(currentStart) {
		return actual
	}

	accumulated := actual
	pointer := currentStart
	for !pointer.After(targetStart) {
		if pointer.After(currentStart) {
			for _, name := range s.CategoryOrder {
				if s.KindOf(name) == models.CategoryKindSavings {
					accumulated = accumulated.Add(s.BudgetFor(name, pointer, now))
				}
			}
		}
		pointer = addMonths(pointer, 1)
	}
	return accumulated
}

// TotalsIn returns actual income and expense magnitudes for active
// transactions within [start, end).
func (s *State) TotalsIn(start, end time.Time) (income, expenses decimal.Decimal) {
	income, expenses = decimal.Zero, decimal.Zero
	for _, t := range s.ActiveTransactions() {
		d := StartOfDay(t.Date)
		if d.Before(StartOfDay(start)) || !d.Before(StartOfDay(end)) {
			continue
		}
		if t.Amount.IsPositive() {
			income = income.Add(t.Amount)
		} else {
			expenses = expenses.Add(t.Amount.Abs())
		}
	}
	return income, expenses
}

// WeekInterval returns the Sunday-to-Sunday week containing now.
func WeekInterval(now time.Time) (start, end time.Time) {
	d := StartOfDay(now)
	start = d.AddDate(0, 0, -int(d.Weekday()))
	return start, start.AddDate(0, 0, 7)
}

// SortOption orders category listings.
type SortOption string

const (
	SortTotalSpending   SortOption = "total_spending"
	SortPercentSpending SortOption = "percent_spending"
	SortAlphabetical    SortOption = "alphabetical"
)

// SortedCategoryNames returns the category order sorted for display. The
// alphabetical sort compares only letters and digits so emoji-prefixed names
// interleave with plain ones.
func (s *State) SortedCategoryNames(option SortOption, date, now time.Time) []string {
	names := append([]string{}, s.CategoryOrder...)

	switch option {
	case SortAlphabetical:
		sort.SliceStable(names, func(i, j int) bool {
			return alphanumericOnly(names[i]) < alphanumericOnly(names[j])
		})
	case SortPercentSpending:
		sort.SliceStable(names, func(i, j int) bool {
			a := s.CategoryProgress(names[i], date, now)
			b := s.CategoryProgress(names[j], date, now)
			if a.Equal(b) {
				return names[i] < names[j]
			}
			return a.GreaterThan(b)
		})
	default:
		sort.SliceStable(names, func(i, j int) bool {
			a := s.Spent(names[i], date, now)
			b := s.Spent(names[j], date, now)
			if a.Equal(b) {
				return names[i] < names[j]
			}
			return a.GreaterThan(b)
		})
	}
	return names
}

func alphanumericOnly(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
