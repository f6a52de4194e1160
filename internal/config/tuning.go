package config

import (
	"math"

	"github.com/theirongolddev/recur/internal/model"
)

// MinConfidence is the lowest confidence score a detection can have and
// still be reported.
const MinConfidence = 40

// FrequencyProfile describes one billing cadence the classifier can match.
type FrequencyProfile struct {
	Frequency       model.Frequency
	ExpectedGapDays float64
	ToleranceDays   float64
	MinOccurrences  int
}

// AmountBand maps a variance ceiling to the tolerance used when counting
// matching amounts, and to the amount type it implies.
type AmountBand struct {
	MaxVariance float64
	Tolerance   float64
	Type        model.AmountType
}

// Tuning is the full set of detection constants. It is passed explicitly to
// the engine so tests can swap in alternate values.
type Tuning struct {
	Profiles      []FrequencyProfile
	AmountBands   []AmountBand
	MinConfidence int
}

// DefaultProfiles returns the frequency table in tie-break order.
func DefaultProfiles() []FrequencyProfile {
	return []FrequencyProfile{
		{Frequency: model.Weekly, ExpectedGapDays: 7, ToleranceDays: 2, MinOccurrences: 4},
		{Frequency: model.Biweekly, ExpectedGapDays: 14, ToleranceDays: 3, MinOccurrences: 3},
		{Frequency: model.Monthly, ExpectedGapDays: 30, ToleranceDays: 5, MinOccurrences: 3},
		{Frequency: model.Quarterly, ExpectedGapDays: 90, ToleranceDays: 10, MinOccurrences: 2},
		{Frequency: model.Annual, ExpectedGapDays: 365, ToleranceDays: 15, MinOccurrences: 2},
	}
}

// DefaultAmountBands returns the variance bands, ordered by MaxVariance.
// The last band is open-ended.
func DefaultAmountBands() []AmountBand {
	return []AmountBand{
		{MaxVariance: 0.05, Tolerance: 0.05, Type: model.AmountFixed},
		{MaxVariance: 0.15, Tolerance: 0.15, Type: model.AmountFixed},
		{MaxVariance: math.Inf(1), Tolerance: 0.25, Type: model.AmountVariable},
	}
}

// DefaultTuning returns the production detection constants.
func DefaultTuning() Tuning {
	return Tuning{
		Profiles:      DefaultProfiles(),
		AmountBands:   DefaultAmountBands(),
		MinConfidence: MinConfidence,
	}
}

// LookupProfile returns the profile for freq from the tuning table.
// Returns a zero profile and false if the table has no such cadence.
func (t Tuning) LookupProfile(freq model.Frequency) (FrequencyProfile, bool) {
	for _, p := range t.Profiles {
		if p.Frequency == freq {
			return p, true
		}
	}
	return FrequencyProfile{}, false
}

// BandFor returns the first band whose ceiling covers variance. Variances
// above every ceiling (or NaN) fall into the last band.
func (t Tuning) BandFor(variance float64) AmountBand {
	for _, b := range t.AmountBands {
		if variance <= b.MaxVariance {
			return b
		}
	}
	if len(t.AmountBands) == 0 {
		return AmountBand{Tolerance: 0.25, Type: model.AmountVariable}
	}
	return t.AmountBands[len(t.AmountBands)-1]
}

// MonthlyFactor converts one charge at freq into a monthly-equivalent multiplier.
func MonthlyFactor(freq model.Frequency) float64 {
	switch freq {
	case model.Weekly:
		return 52.0 / 12.0
	case model.Biweekly:
		return 26.0 / 12.0
	case model.Monthly:
		return 1
	case model.Quarterly:
		return 1.0 / 3.0
	case model.Annual:
		return 1.0 / 12.0
	default:
		return 0
	}
}
