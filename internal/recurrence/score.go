package recurrence

import "github.com/theirongolddev/recur/internal/model"

// Score combines amount stability, timing regularity, history length and how
// clearly the group fits a cadence into a 0-100 breakdown. total is the
// number of transactions the amount match ratio is measured against.
func Score(amount AmountAnalysis, freq FrequencyMatch, occurrences, total int) model.ScoreBreakdown {
	var ratio float64
	if total > 0 {
		ratio = float64(amount.MatchingCount) / float64(total)
	}

	return model.ScoreBreakdown{
		Amount:     amountScore(amount.Variance),
		Timing:     timingScore(freq.GapConsistency),
		Occurrence: occurrenceScore(occurrences),
		Clarity:    clarityScore(freq, ratio),
	}
}

func amountScore(variance float64) int {
	switch {
	case variance <= 0.02:
		return 30
	case variance <= 0.05:
		return 25
	case variance <= 0.10:
		return 20
	case variance <= 0.15:
		return 15
	case variance <= 0.25:
		return 10
	default:
		return 5
	}
}

func timingScore(consistency float64) int {
	switch {
	case consistency >= 0.95:
		return 30
	case consistency >= 0.90:
		return 25
	case consistency >= 0.80:
		return 20
	case consistency >= 0.70:
		return 15
	case consistency >= 0.60:
		return 10
	default:
		return 5
	}
}

func occurrenceScore(n int) int {
	switch {
	case n >= 10:
		return 20
	case n >= 6:
		return 15
	case n >= 4:
		return 10
	case n >= 3:
		return 7
	default:
		return 4
	}
}

func clarityScore(freq FrequencyMatch, amountMatchRatio float64) int {
	switch {
	case !freq.Matched:
		return 5
	case freq.GapConsistency >= 0.8 && amountMatchRatio >= 0.8:
		return 20
	case freq.GapConsistency >= 0.6 && amountMatchRatio >= 0.6:
		return 15
	default:
		return 10
	}
}
