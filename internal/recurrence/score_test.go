package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountScore(t *testing.T) {
	tests := []struct {
		variance float64
		want     int
	}{
		{0, 30}, {0.02, 30}, {0.021, 25}, {0.05, 25}, {0.06, 20}, {0.10, 20},
		{0.11, 15}, {0.15, 15}, {0.2, 10}, {0.25, 10}, {0.26, 5}, {3, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, amountScore(tt.variance), "amountScore(%v)", tt.variance)
	}
}

func TestTimingScore(t *testing.T) {
	tests := []struct {
		consistency float64
		want        int
	}{
		{1, 30}, {0.95, 30}, {0.94, 25}, {0.90, 25}, {0.85, 20}, {0.80, 20},
		{0.75, 15}, {0.70, 15}, {0.65, 10}, {0.60, 10}, {0.5, 5}, {0, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timingScore(tt.consistency), "timingScore(%v)", tt.consistency)
	}
}

func TestOccurrenceScore(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 4}, {2, 4}, {3, 7}, {4, 10}, {5, 10}, {6, 15}, {9, 15}, {10, 20}, {40, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, occurrenceScore(tt.n), "occurrenceScore(%d)", tt.n)
	}
}

func TestClarityScore(t *testing.T) {
	matched := func(c float64) FrequencyMatch { return FrequencyMatch{Matched: true, GapConsistency: c} }

	assert.Equal(t, 5, clarityScore(FrequencyMatch{}, 1))
	assert.Equal(t, 20, clarityScore(matched(0.8), 0.8))
	assert.Equal(t, 15, clarityScore(matched(0.8), 0.79))
	assert.Equal(t, 15, clarityScore(matched(0.6), 0.6))
	assert.Equal(t, 10, clarityScore(matched(0.59), 1))
	assert.Equal(t, 10, clarityScore(matched(1), 0.5))
}

func TestScore_Monotonic(t *testing.T) {
	prev := amountScore(0)
	for v := 0.0; v <= 1; v += 0.005 {
		s := amountScore(v)
		assert.LessOrEqual(t, s, prev, "amount score rose at variance %v", v)
		prev = s
	}

	prev = timingScore(0)
	for c := 0.0; c <= 1; c += 0.005 {
		s := timingScore(c)
		assert.GreaterOrEqual(t, s, prev, "timing score fell at consistency %v", c)
		prev = s
	}
}

func TestScore_Combines(t *testing.T) {
	amount := AmountAnalysis{Variance: 0, MatchingCount: 6}
	freq := FrequencyMatch{Matched: true, GapConsistency: 1}

	got := Score(amount, freq, 6, 6)
	assert.Equal(t, 30, got.Amount)
	assert.Equal(t, 30, got.Timing)
	assert.Equal(t, 15, got.Occurrence)
	assert.Equal(t, 20, got.Clarity)
	assert.Equal(t, 95, got.Total())

	got = Score(amount, freq, 6, 0)
	assert.Equal(t, 10, got.Clarity, "no transactions means a zero match ratio")
}
