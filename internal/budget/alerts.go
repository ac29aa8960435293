package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/models"
)

// alertThreshold is the spend/budget ratio at which a category alert fires.
var alertThreshold = decimal.New(8, -1)

// Alert is a threshold-crossing event for one category in one period.
// Delivery is the caller's concern.
type Alert struct {
	PeriodKey string          `json:"period_key"`
	Category  string          `json:"category"`
	Spent     decimal.Decimal `json:"spent"`
	Budget    decimal.Decimal `json:"budget"`
	Ratio     decimal.Decimal `json:"ratio"`
}

func alertKey(periodKey, category string) string {
	return periodKey + "|" + category
}

// EvaluateAlerts fires at most one alert per (period, category) pair when
// spending in the current period reaches the threshold share of a positive
// budget. Fired keys are recorded in the state, so re-evaluating after a
// threshold is crossed is a no-op; a new period key resets the slate
// implicitly. Income and savings categories are never evaluated.
func (s *State) EvaluateAlerts(now time.Time) []Alert {
	p := s.PeriodBounds(now, now)
	periodKey := p.Key()

	spentByCategory := make(map[string]decimal.Decimal)
	for _, t := range s.periodTransactions(p) {
		if !t.Amount.IsNegative() {
			continue
		}
		category := s.CategoryFor(t)
		if s.KindOf(category) != models.CategoryKindExpense {
			continue
		}
		spentByCategory[category] = spentByCategory[category].Add(t.Amount.Abs())
	}

	var fired []Alert
	for category, spent := range spentByCategory {
		budget := s.BudgetFor(category, now, now)
		if !budget.IsPositive() {
			continue
		}
		ratio := spent.Div(budget)
		if ratio.LessThan(alertThreshold) {
			continue
		}
		key := alertKey(periodKey, category)
		if _, done := s.AlertedKeys[key]; done {
			continue
		}
		s.AlertedKeys[key] = struct{}{}
		fired = append(fired, Alert{
			PeriodKey: periodKey,
			Category:  category,
			Spent:     spent,
			Budget:    budget,
			Ratio:     ratio,
		})
	}
	return fired
}
