package model

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is a billing cadence.
type Frequency string

const (
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
)

// Frequencies lists every cadence in classifier table order.
var Frequencies = []Frequency{Weekly, Biweekly, Monthly, Quarterly, Annual}

// UsesWeekday reports whether the expected billing day is a day of the week
// (0=Sunday) rather than a day of the month.
func (f Frequency) UsesWeekday() bool {
	return f == Weekly || f == Biweekly
}

// AmountType says whether a recurring charge bills a stable amount.
type AmountType string

const (
	AmountFixed    AmountType = "fixed"
	AmountVariable AmountType = "variable"
)

// ConfidenceLevel buckets the 0-100 confidence score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// LevelFor maps a confidence score to its level: >=75 high, >=50 medium,
// anything else low.
func LevelFor(score int) ConfidenceLevel {
	switch {
	case score >= 75:
		return ConfidenceHigh
	case score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ParseConfidenceLevel reads a level name case-insensitively. An empty
// string means low.
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	switch l := ConfidenceLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case "", ConfidenceLow:
		return ConfidenceLow, nil
	case ConfidenceMedium, ConfidenceHigh:
		return l, nil
	default:
		return "", fmt.Errorf("unknown confidence level %q (want low, medium or high)", s)
	}
}

// Rank orders levels for filtering: low=0, medium=1, high=2.
func (l ConfidenceLevel) Rank() int {
	switch l {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// ScoreBreakdown holds the four sub-scores that sum to the confidence score.
type ScoreBreakdown struct {
	Amount     int `json:"amountScore"`     // 0-30
	Timing     int `json:"timingScore"`     // 0-30
	Occurrence int `json:"occurrenceScore"` // 0-20
	Clarity    int `json:"clarityScore"`    // 0-20
}

// Total returns the confidence score.
func (b ScoreBreakdown) Total() int {
	return b.Amount + b.Timing + b.Occurrence + b.Clarity
}

// DetectedSubscription is one recurring charge found in a detection pass.
// Amounts are absolute values rounded to 2 decimals.
type DetectedSubscription struct {
	ID                 string          `json:"id"`
	RecipientName      string          `json:"recipientName"`
	AverageAmount      float64         `json:"averageAmount"`
	MinAmount          float64         `json:"minAmount"`
	MaxAmount          float64         `json:"maxAmount"`
	TransactionIDs     []string        `json:"transactionIds"`
	OccurrenceCount    int             `json:"occurrenceCount"`
	FirstSeen          time.Time       `json:"firstSeen"`
	LastSeen           time.Time       `json:"lastSeen"`
	Confidence         int             `json:"confidence"`
	ConfidenceLevel    ConfidenceLevel `json:"confidenceLevel"`
	BillingFrequency   Frequency       `json:"billingFrequency"`
	ExpectedBillingDay int             `json:"expectedBillingDay"`
	AmountVariance     float64         `json:"amountVariance"` // percent
	AmountType         AmountType      `json:"amountType"`
	NextExpectedDate   time.Time       `json:"nextExpectedDate"`
	ScoreBreakdown     ScoreBreakdown  `json:"scoreBreakdown"`
}
