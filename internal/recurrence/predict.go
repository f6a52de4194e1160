package recurrence

import (
	"time"

	"github.com/theirongolddev/recur/internal/model"
)

// PredictNextDate projects the next charge one billing period after last.
// Month arithmetic clamps to the end of the target month, so Jan 31 plus one
// month is Feb 28 (or 29), never a date in March.
func PredictNextDate(last time.Time, freq model.Frequency) time.Time {
	return PredictNth(last, freq, 1)
}

// PredictNth projects the charge n billing periods after last. Each step is
// measured from last itself, so clamping in a short month does not carry
// into later months: Jan 31 gives Feb 29, Mar 31, Apr 30.
func PredictNth(last time.Time, freq model.Frequency, n int) time.Time {
	switch freq {
	case model.Weekly:
		return last.AddDate(0, 0, 7*n)
	case model.Biweekly:
		return last.AddDate(0, 0, 14*n)
	case model.Quarterly:
		return addMonthsClamped(last, 3*n)
	case model.Annual:
		return addMonthsClamped(last, 12*n)
	default:
		return addMonthsClamped(last, n)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// ExpectedBillingDay returns the most common weekday (0=Sunday) for weekly
// and biweekly cadences, or the most common day of month otherwise. Ties go
// to the lowest day. Empty input yields 1.
func ExpectedBillingDay(dates []time.Time, freq model.Frequency) int {
	if len(dates) == 0 {
		return 1
	}

	var counts [32]int
	for _, d := range dates {
		if freq.UsesWeekday() {
			counts[int(d.Weekday())]++
		} else {
			counts[d.Day()]++
		}
	}

	best, bestCount := 1, 0
	if freq.UsesWeekday() {
		best = 0
	}
	for day, c := range counts {
		if c > bestCount {
			best, bestCount = day, c
		}
	}
	return best
}
