package recurrence

import (
	"math"

	"github.com/theirongolddev/recur/internal/config"
	"github.com/theirongolddev/recur/internal/model"
)

// AmountAnalysis describes how stable a group's charge amounts are.
type AmountAnalysis struct {
	CoreAmount    float64 // median absolute amount
	Variance      float64 // median relative absolute deviation from CoreAmount
	Tolerance     float64
	Type          model.AmountType
	MatchingCount int // amounts within Tolerance of CoreAmount
}

// AnalyzeAmounts computes the robust center and dispersion of the absolute
// amounts and looks up the tolerance band for that dispersion.
func AnalyzeAmounts(amounts []float64, tuning config.Tuning) AmountAnalysis {
	abs := make([]float64, len(amounts))
	for i, a := range amounts {
		abs[i] = math.Abs(a)
	}

	core := median(abs)

	var variance float64
	if core != 0 && len(abs) > 0 {
		devs := make([]float64, len(abs))
		for i, a := range abs {
			devs[i] = math.Abs(a-core) / core
		}
		variance = median(devs)
	}

	band := tuning.BandFor(variance)

	matching := 0
	for _, a := range abs {
		if withinRelative(a, core, band.Tolerance) {
			matching++
		}
	}

	return AmountAnalysis{
		CoreAmount:    core,
		Variance:      variance,
		Tolerance:     band.Tolerance,
		Type:          band.Type,
		MatchingCount: matching,
	}
}

// withinRelative reports |v-ref|/ref <= tol. A zero reference only matches
// zero.
func withinRelative(v, ref, tol float64) bool {
	if ref == 0 {
		return v == 0
	}
	return math.Abs(v-ref)/ref <= tol
}
