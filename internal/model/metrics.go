package model

import "time"

// SummaryStats holds the top-level aggregate across detected subscriptions.
type SummaryStats struct {
	Subscriptions int
	High          int
	Medium        int
	Low           int
	Fixed         int
	Variable      int

	MonthlyCost float64 // monthly-equivalent spend
	YearlyCost  float64
	Charges     int // transactions covered by detections
}

// FrequencyStats holds aggregated spend for one billing cadence.
type FrequencyStats struct {
	Frequency     Frequency
	Subscriptions int
	MonthlyCost   float64
	SharePercent  float64
}

// UpcomingCharge is one predicted future charge.
type UpcomingCharge struct {
	Date           time.Time
	RecipientName  string
	Amount         float64
	Frequency      Frequency
	Confidence     int
	SubscriptionID string
}
