package model

import (
	"fmt"
	"time"
)

// NextBillingDate returns the billing date one period after current.
//
// MONTHLY adds one calendar month and clamps to the last day of the target
// month when the day does not exist there (Jan 31 -> Feb 28/29, May 31 -> Jun 30).
// YEARLY adds one calendar year; Feb 29 becomes Feb 28 in a non-leap year.
// Clock time and location are kept. An unknown period is a programming error.
func NextBillingDate(current time.Time, period Period) time.Time {
	switch period {
	case PeriodMonthly:
		return addMonthsClamped(current, 1)
	case PeriodYearly:
		return addMonthsClamped(current, 12)
	default:
		panic(fmt.Sprintf("model: unknown billing period %q", period))
	}
}

// addMonthsClamped is time.AddDate(0, n, 0) without the overflow into the following month.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	idx := int(m) - 1 + n
	ty := y + idx/12
	tm := time.Month(idx%12 + 1)
	if last := daysIn(ty, tm, t.Location()); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(ty, tm, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
