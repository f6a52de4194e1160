package recurrence

import (
	"time"

	"github.com/theirongolddev/recur/internal/model"
)

// Gaps returns the whole-day distance between each transaction and the one
// before it. Time of day is ignored. The result has len(txns)-1 entries.
func Gaps(txns []model.Transaction) []int {
	if len(txns) < 2 {
		return nil
	}
	gaps := make([]int, 0, len(txns)-1)
	for i := 1; i < len(txns); i++ {
		gaps = append(gaps, daysBetween(txns[i-1].Date, txns[i].Date))
	}
	return gaps
}

// daysBetween counts calendar days between a and b, each taken in its own
// location, as an absolute value.
func daysBetween(a, b time.Time) int {
	d := civilDay(b) - civilDay(a)
	if d < 0 {
		d = -d
	}
	return int(d)
}

func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
