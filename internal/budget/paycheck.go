package budget

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Paycheck detection heuristics. The cluster window and minimum amount are
// tuned to a biweekly/semimonthly cadence; they are deliberate constants,
// not derived values.
var paycheckMinimumAmount = decimal.NewFromInt(1000)

const paycheckClusterDays = 5

// detectPaychecks scans the transaction set for recurring paycheck deposits:
// posted transactions whose resolved category name contains "paycheck" and
// whose magnitude clears the minimum amount. Dates are clustered so that a
// deposit landing within the cluster window of an already-kept date is
// treated as part of the same paycheck event.
//
// The most recent detected date becomes the confirmed-paycheck anchor, and
// its day-of-month becomes the default period start day so projected future
// periods follow the observed cadence.
func (s *State) detectPaychecks() {
	var raw []time.Time
	for _, t := range s.Transactions {
		if t.IsPending {
			continue
		}
		if !strings.Contains(strings.ToLower(s.CategoryFor(t)), "paycheck") {
			continue
		}
		if t.Amount.Abs().LessThan(paycheckMinimumAmount) {
			continue
		}
		raw = append(raw, StartOfDay(t.Date))
	}
	sortTimes(raw)

	var clustered []time.Time
	for _, date := range raw {
		if n := len(clustered); n > 0 && daysBetween(clustered[n-1], date) < paycheckClusterDays {
			continue
		}
		clustered = append(clustered, date)
	}
	s.paycheckDates = clustered

	if len(clustered) > 0 {
		last := clustered[len(clustered)-1]
		s.AnchorPaycheck = &last
		if day := last.Day(); s.BudgetStartDay != day {
			s.BudgetStartDay = day
		}
	}
}

func sortTimes(ts []time.Time) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}
