package budget

import (
	"fmt"
	"time"
)

// rollForwardDays is how far past the last real paycheck a future date may be
// before period projection falls back to the day-of-month rule. One cycle;
// beyond it, projected periods roll forward monthly.
const rollForwardDays = 28

// Period is a budget cycle. End is exclusive. The current period stays open
// (Open true, End zero) until the next paycheck transaction actually posts;
// rolling over on a merely expected payday would misattribute transactions.
type Period struct {
	Start time.Time
	End   time.Time
	Open  bool
}

// Contains reports whether a date falls inside the period.
func (p Period) Contains(date time.Time) bool {
	d := StartOfDay(date)
	if d.Before(p.Start) {
		return false
	}
	return p.Open || d.Before(p.End)
}

// Key returns the canonical period key.
func (p Period) Key() string {
	return PeriodKey(p.Start)
}

// PeriodRelation classifies a period relative to the one containing now.
type PeriodRelation string

const (
	PeriodPast    PeriodRelation = "past"
	PeriodCurrent PeriodRelation = "current"
	PeriodFuture  PeriodRelation = "future"
)

// PeriodStart resolves the start of the period containing date.
//
// A detected paycheck on or before the date wins, falling back to the
// confirmed-paycheck anchor. For dates at or before now that is final; with
// neither available the day-of-month rule applies. For future dates the
// paycheck/anchor candidate only holds within one cycle (rollForwardDays);
// beyond that the day-of-month projection takes over so far-future periods
// roll forward monthly.
func (s *State) PeriodStart(date, now time.Time) time.Time {
	d := StartOfDay(date)

	var candidate *time.Time
	for i := len(s.paycheckDates) - 1; i >= 0; i-- {
		if !s.paycheckDates[i].After(d) {
			c := s.paycheckDates[i]
			candidate = &c
			break
		}
	}
	if candidate == nil && s.AnchorPaycheck != nil {
		if a := StartOfDay(*s.AnchorPaycheck); !a.After(d) {
			candidate = &a
		}
	}

	if !d.After(StartOfDay(now)) {
		if candidate != nil {
			return *candidate
		}
		return s.fallbackPeriodStart(d)
	}

	if candidate != nil && daysBetween(*candidate, d) < rollForwardDays {
		return *candidate
	}
	return s.fallbackPeriodStart(d)
}

// fallbackPeriodStart anchors the period to BudgetStartDay of the date's
// month, rolling back one month when the date falls before that day. The day
// clamps to the length of whichever month the anchor finally lands in, so a
// start day of 31 yields Jan 31, Feb 28, Mar 31.
func (s *State) fallbackPeriodStart(d time.Time) time.Time {
	day := s.BudgetStartDay
	if day < 1 {
		day = 1
	}
	month := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	startDay := day
	if last := daysInMonth(month); startDay > last {
		startDay = last
	}
	if d.Day() < startDay {
		month = addMonths(month, -1)
		startDay = day
		if last := daysInMonth(month); startDay > last {
			startDay = last
		}
	}
	return time.Date(month.Year(), month.Month(), startDay, 0, 0, 0, 0, time.UTC)
}

// PeriodBounds resolves the full period containing date. The end is the next
// detected paycheck after the start; with none, the current period is left
// open and any other period closes one calendar month after it starts.
func (s *State) PeriodBounds(date, now time.Time) Period {
	start := s.PeriodStart(date, now)
	for _, p := range s.paycheckDates {
		if p.After(start) {
			return Period{Start: start, End: p}
		}
	}
	if start.Equal(s.PeriodStart(now, now)) {
		return Period{Start: start, Open: true}
	}
	return Period{Start: start, End: addMonths(start, 1)}
}

// RelationOf classifies the period containing date against the current one.
func (s *State) RelationOf(date, now time.Time) PeriodRelation {
	target := s.PeriodStart(date, now)
	current := s.PeriodStart(now, now)
	switch {
	case target.After(current):
		return PeriodFuture
	case target.Before(current):
		return PeriodPast
	default:
		return PeriodCurrent
	}
}

// PeriodLabel renders a human label for the period containing date: month and
// year for future periods, "Starting <day>" for the open current period, and
// the full date range for past ones.
func (s *State) PeriodLabel(date, now time.Time) string {
	start := s.PeriodStart(date, now)

	switch s.RelationOf(date, now) {
	case PeriodFuture:
		return start.Format("January 2006")
	case PeriodCurrent:
		return "Starting " + start.Format("Jan 2")
	}

	end := addMonths(start, 1).AddDate(0, 0, -1)
	for _, p := range s.paycheckDates {
		if p.After(start) {
			end = p.AddDate(0, 0, -1)
			break
		}
	}

	if start.Year() == end.Year() {
		return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2"))
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 2 '06"), end.Format("Jan 2 '06"))
}

// StepPeriod moves a reference date forward or backward by whole periods,
// walking the detected paycheck list while inside it and stepping by calendar
// months once past either end. Stepping back past the oldest paycheck is a
// no-op.
func (s *State) StepPeriod(date time.Time, step int, now time.Time) time.Time {
	if len(s.paycheckDates) == 0 {
		return addMonths(date, step)
	}

	currentStart := s.PeriodStart(date, now)
	index := -1
	for i, p := range s.paycheckDates {
		if p.Equal(currentStart) {
			index = i
			break
		}
	}
	if index < 0 {
		// The reference date is in a projected future period.
		return addMonths(date, step)
	}

	next := index + step
	switch {
	case next >= 0 && next < len(s.paycheckDates):
		return s.paycheckDates[next]
	case next >= len(s.paycheckDates):
		return addMonths(date, 1)
	default:
		return date
	}
}
