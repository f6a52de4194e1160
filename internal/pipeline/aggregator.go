// Package pipeline orchestrates statement loading, caching, detection and
// the aggregates built on top of detected subscriptions.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/recur/internal/config"
	"github.com/theirongolddev/recur/internal/model"
	"github.com/theirongolddev/recur/internal/recurrence"
)

// Summarize computes totals across detected subscriptions. Spend is the
// monthly equivalent of each subscription's average charge.
func Summarize(subs []model.DetectedSubscription) model.SummaryStats {
	var stats model.SummaryStats

	for _, s := range subs {
		stats.Subscriptions++
		stats.Charges += s.OccurrenceCount
		stats.MonthlyCost += MonthlyCost(s)

		switch s.ConfidenceLevel {
		case model.ConfidenceHigh:
			stats.High++
		case model.ConfidenceMedium:
			stats.Medium++
		default:
			stats.Low++
		}

		if s.AmountType == model.AmountVariable {
			stats.Variable++
		} else {
			stats.Fixed++
		}
	}

	stats.YearlyCost = stats.MonthlyCost * 12
	return stats
}

// MonthlyCost returns the monthly-equivalent spend of one subscription.
func MonthlyCost(s model.DetectedSubscription) float64 {
	return s.AverageAmount * config.MonthlyFactor(s.BillingFrequency)
}

// AggregateFrequencies groups subscriptions by billing cadence, sorted by
// monthly-equivalent spend descending. Cadences with no subscriptions are
// omitted.
func AggregateFrequencies(subs []model.DetectedSubscription) []model.FrequencyStats {
	byFreq := make(map[model.Frequency]*model.FrequencyStats)
	var total float64

	for _, s := range subs {
		fs, ok := byFreq[s.BillingFrequency]
		if !ok {
			fs = &model.FrequencyStats{Frequency: s.BillingFrequency}
			byFreq[s.BillingFrequency] = fs
		}
		cost := MonthlyCost(s)
		fs.Subscriptions++
		fs.MonthlyCost += cost
		total += cost
	}

	result := make([]model.FrequencyStats, 0, len(byFreq))
	for _, f := range model.Frequencies {
		fs, ok := byFreq[f]
		if !ok {
			continue
		}
		if total > 0 {
			fs.SharePercent = fs.MonthlyCost / total * 100
		}
		result = append(result, *fs)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].MonthlyCost > result[j].MonthlyCost
	})
	return result
}

// Upcoming lists the predicted charges falling in [from, from+days). A
// subscription whose next date is already behind from is rolled forward one
// billing period at a time, so stale detections still show when they would
// bill next. The window compares calendar days, so a charge due on from's
// day is listed whatever the time of day. Charges are ordered by date, then
// recipient name.
func Upcoming(subs []model.DetectedSubscription, from time.Time, days int) []model.UpcomingCharge {
	if days <= 0 {
		return nil
	}
	from = calendarDay(from)
	end := from.AddDate(0, 0, days)

	var charges []model.UpcomingCharge
	for _, s := range subs {
		for n := 1; ; n++ {
			d := recurrence.PredictNth(s.LastSeen, s.BillingFrequency, n)
			due := calendarDay(d)
			if !due.Before(end) {
				break
			}
			if due.Before(from) {
				continue
			}
			charges = append(charges, model.UpcomingCharge{
				Date:           d,
				RecipientName:  s.RecipientName,
				Amount:         s.AverageAmount,
				Frequency:      s.BillingFrequency,
				Confidence:     s.Confidence,
				SubscriptionID: s.ID,
			})
		}
	}

	sort.SliceStable(charges, func(i, j int) bool {
		if !charges[i].Date.Equal(charges[j].Date) {
			return charges[i].Date.Before(charges[j].Date)
		}
		return charges[i].RecipientName < charges[j].RecipientName
	})
	return charges
}

// calendarDay maps t to midnight UTC of the date it shows in its own location.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FilterByTime returns transactions dated within [since, until). A zero
// bound is open.
func FilterByTime(txns []model.Transaction, since, until time.Time) []model.Transaction {
	if since.IsZero() && until.IsZero() {
		return txns
	}

	var result []model.Transaction
	for _, t := range txns {
		if !since.IsZero() && t.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !t.Date.Before(until) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// FilterByMerchant returns subscriptions whose name contains substr.
func FilterByMerchant(subs []model.DetectedSubscription, substr string) []model.DetectedSubscription {
	if substr == "" {
		return subs
	}
	var result []model.DetectedSubscription
	for _, s := range subs {
		if containsIgnoreCase(s.RecipientName, substr) {
			result = append(result, s)
		}
	}
	return result
}

// FilterByLevel keeps subscriptions at or above the given confidence level.
func FilterByLevel(subs []model.DetectedSubscription, level model.ConfidenceLevel) []model.DetectedSubscription {
	if level == "" || level == model.ConfidenceLow {
		return subs
	}
	var result []model.DetectedSubscription
	for _, s := range subs {
		if s.ConfidenceLevel.Rank() >= level.Rank() {
			result = append(result, s)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
