package budget

import "time"

// periodKeyLayout is the canonical string form of a period's start date,
// used to key period budget overrides and alert records.
const periodKeyLayout = "2006-01-02"

// StartOfDay truncates a time to UTC midnight. All period arithmetic works on
// whole days; transaction dates carry no meaningful time-of-day component.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of whole days from a to b (negative when b
// precedes a).
func daysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24)
}

// addMonths adds n calendar months, clamping the day-of-month to the target
// month's length so Jan 31 + 1 month lands on the last day of February
// instead of rolling into March.
func addMonths(t time.Time, n int) time.Time {
	t = StartOfDay(t)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := t.Day()
	if last := daysInMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// PeriodKey returns the canonical key for a period start date.
func PeriodKey(start time.Time) string {
	return StartOfDay(start).Format(periodKeyLayout)
}
