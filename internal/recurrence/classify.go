package recurrence

import (
	"math"

	"github.com/theirongolddev/recur/internal/config"
)

// FrequencyMatch is the classifier's verdict for one gap sequence.
type FrequencyMatch struct {
	Matched        bool
	Profile        config.FrequencyProfile
	MedianGap      float64
	GapConsistency float64 // share of gaps within the profile's tolerance, 0-1
}

// Classify picks the cadence whose expected gap is closest to the median gap.
// A profile is only eligible within twice its tolerance; on equal distance
// the earlier profile in the table wins.
func Classify(gaps []int, profiles []config.FrequencyProfile) FrequencyMatch {
	if len(gaps) == 0 {
		return FrequencyMatch{}
	}

	values := make([]float64, len(gaps))
	for i, g := range gaps {
		values[i] = float64(g)
	}
	med := median(values)

	best := -1
	bestDist := math.Inf(1)
	for i, p := range profiles {
		dist := math.Abs(med - p.ExpectedGapDays)
		if dist > 2*p.ToleranceDays {
			continue
		}
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return FrequencyMatch{MedianGap: med}
	}

	profile := profiles[best]
	within := 0
	for _, g := range values {
		if math.Abs(g-profile.ExpectedGapDays) <= profile.ToleranceDays {
			within++
		}
	}

	return FrequencyMatch{
		Matched:        true,
		Profile:        profile,
		MedianGap:      med,
		GapConsistency: float64(within) / float64(len(values)),
	}
}
