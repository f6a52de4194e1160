package recurrence

import (
	"fmt"
	"testing"
	"time"

	"github.com/theirongolddev/recur/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// monthlySeries builds n charges on the same day of consecutive months.
func monthlySeries(t *testing.T, prefix, desc, start string, amounts ...float64) []model.Transaction {
	t.Helper()
	base := mustDate(t, start)
	txns := make([]model.Transaction, len(amounts))
	for i, a := range amounts {
		txns[i] = model.Transaction{
			ID:          fmt.Sprintf("%s-%d", prefix, i+1),
			Date:        base.AddDate(0, i, 0),
			Description: desc,
			Amount:      a,
		}
	}
	return txns
}

// everyNDays builds charges spaced a fixed number of days apart.
func everyNDays(t *testing.T, prefix, desc, start string, days int, amounts ...float64) []model.Transaction {
	t.Helper()
	base := mustDate(t, start)
	txns := make([]model.Transaction, len(amounts))
	for i, a := range amounts {
		txns[i] = model.Transaction{
			ID:          fmt.Sprintf("%s-%d", prefix, i+1),
			Date:        base.AddDate(0, 0, days*i),
			Description: desc,
			Amount:      a,
		}
	}
	return txns
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
