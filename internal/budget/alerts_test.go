package budget

import (
	"testing"
	"time"

	"github.com/dwojc6/mybudget/internal/testutil"
)

func TestEvaluateAlerts(t *testing.T) {
	now := testutil.Date(2025, time.January, 20)

	setup := func() *State {
		state, paycheck := newTestState()
		addPaycheck(state, paycheck, "1000.00", testutil.Date(2025, time.January, 10))
		groceries := categoryByName(state, "Groceries")
		addExpense(state, groceries, "GROCERY MART", "-80.00", testutil.Date(2025, time.January, 12))
		state.Recompute()
		state.SetBudget("Groceries", testutil.Money("100.00"), now, now)
		return state
	}

	t.Run("fires at the threshold", func(t *testing.T) {
		state := setup()
		alerts := state.EvaluateAlerts(now)
		if len(alerts) != 1 {
			t.Fatalf("expected 1 alert, got %d", len(alerts))
		}
		alert := alerts[0]
		if alert.Category != "Groceries" {
			t.Errorf("expected Groceries alert, got %q", alert.Category)
		}
		testutil.AssertDecimalEqual(t, alert.Spent, "80")
		testutil.AssertDecimalEqual(t, alert.Budget, "100")
		testutil.AssertDecimalEqual(t, alert.Ratio, "0.8")
	})

	t.Run("fires at most once per period and category", func(t *testing.T) {
		state := setup()
		if got := len(state.EvaluateAlerts(now)); got != 1 {
			t.Fatalf("expected 1 alert on first pass, got %d", got)
		}
		if got := len(state.EvaluateAlerts(now)); got != 0 {
			t.Errorf("expected no alert on second pass, got %d", got)
		}
	})

	t.Run("stays quiet below the threshold", func(t *testing.T) {
		state := setup()
		state.SetBudget("Groceries", testutil.Money("200.00"), now, now)
		if got := len(state.EvaluateAlerts(now)); got != 0 {
			t.Errorf("expected no alert at 40%%, got %d", got)
		}
	})

	t.Run("ignores categories without a budget", func(t *testing.T) {
		state := setup()
		state.SetBudget("Groceries", testutil.Money("0"), now, now)
		if got := len(state.EvaluateAlerts(now)); got != 0 {
			t.Errorf("expected no alert without a budget, got %d", got)
		}
	})

	t.Run("ignores savings categories", func(t *testing.T) {
		state := setup()
		savings := categoryByName(state, "Emergency Savings")
		addExpense(state, savings, "TRANSFER TO SAVINGS", "-90.00", testutil.Date(2025, time.January, 13))
		state.Recompute()
		state.SetBudget("Emergency Savings", testutil.Money("100.00"), now, now)

		for _, alert := range state.EvaluateAlerts(now) {
			if alert.Category == "Emergency Savings" {
				t.Error("savings categories must not fire alerts")
			}
		}
	})
}
