package recurrence

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/recur/internal/config"
	"github.com/theirongolddev/recur/internal/model"
)

// subscriptionNamespace seeds the name-based IDs of detections so the same
// merchant key always yields the same ID.
var subscriptionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/theirongolddev/recur/subscription"))

// Options controls a detection pass.
type Options struct {
	// Tuning holds the cadence table, amount bands and confidence floor.
	// A zero Tuning means config.DefaultTuning().
	Tuning config.Tuning

	// Workers bounds the per-group worker pool. <= 0 means GOMAXPROCS.
	Workers int

	// MaxGroups caps how many merchant groups are evaluated, largest first.
	// <= 0 means no cap.
	MaxGroups int

	// Skip holds merchant keys that were already reviewed and should not be
	// reported again.
	Skip map[string]struct{}
}

// DefaultOptions returns options with the production tuning.
func DefaultOptions() Options {
	return Options{Tuning: config.DefaultTuning()}
}

func (o Options) withDefaults() Options {
	if len(o.Tuning.Profiles) == 0 && len(o.Tuning.AmountBands) == 0 && o.Tuning.MinConfidence == 0 {
		o.Tuning = config.DefaultTuning()
	}
	return o
}

// Detect finds recurring charges in txns. The input is not modified. Results
// are ordered by confidence descending, then recipient name, then ID.
func Detect(txns []model.Transaction, opts Options) []model.DetectedSubscription {
	opts = opts.withDefaults()

	groups := Group(txns)
	if len(opts.Skip) > 0 {
		kept := groups[:0]
		for _, g := range groups {
			if _, skip := opts.Skip[g.Key]; !skip {
				kept = append(kept, g)
			}
		}
		groups = kept
	}
	groups = capGroups(groups, opts.MaxGroups)

	if len(groups) == 0 {
		return nil
	}

	numWorkers := opts.Workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(groups) {
		numWorkers = len(groups)
	}

	work := make(chan int, len(groups))
	results := make([]Trace, len(groups))
	var wg sync.WaitGroup

	for i := range groups {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = evaluate(groups[idx], opts.Tuning)
			}
		}()
	}

	wg.Wait()

	var subs []model.DetectedSubscription
	for _, tr := range results {
		if tr.Subscription != nil {
			subs = append(subs, *tr.Subscription)
		}
	}
	SortByConfidence(subs)

	return subs
}

// SortByConfidence orders detections by confidence descending, breaking ties
// by recipient name and then ID.
func SortByConfidence(subs []model.DetectedSubscription) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Confidence != subs[j].Confidence {
			return subs[i].Confidence > subs[j].Confidence
		}
		if subs[i].RecipientName != subs[j].RecipientName {
			return subs[i].RecipientName < subs[j].RecipientName
		}
		return subs[i].ID < subs[j].ID
	})
}

// capGroups keeps the limit largest groups. Groups arrive sorted by key, which
// the stable sort keeps as the tie-break.
func capGroups(groups []MerchantGroup, limit int) []MerchantGroup {
	if limit <= 0 || len(groups) <= limit {
		return groups
	}
	sorted := make([]MerchantGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Transactions) > len(sorted[j].Transactions)
	})
	return sorted[:limit]
}

// evaluate runs one group through the acceptance filters, stopping at the
// first one it fails.
func evaluate(g MerchantGroup, tuning config.Tuning) Trace {
	tr := Trace{Key: g.Key, Transactions: len(g.Transactions)}

	tr.Gaps = Gaps(g.Transactions)
	if len(tr.Gaps) == 0 {
		tr.Outcome = RejectTooFewTransactions
		return tr
	}

	tr.Frequency = Classify(tr.Gaps, tuning.Profiles)
	if !tr.Frequency.Matched {
		tr.Outcome = RejectNoFrequency
		return tr
	}

	count := len(g.Transactions)
	if count < tr.Frequency.Profile.MinOccurrences {
		tr.Outcome = RejectTooFewOccurrences
		return tr
	}

	amounts := make([]float64, count)
	for i, t := range g.Transactions {
		amounts[i] = t.Amount
	}
	tr.Amounts = AnalyzeAmounts(amounts, tuning)
	if tr.Amounts.MatchingCount < (count+1)/2 {
		tr.Outcome = RejectAmountMismatch
		return tr
	}

	tr.Score = Score(tr.Amounts, tr.Frequency, count, count)
	if !meetsThreshold(tr.Score.Total(), tuning.MinConfidence) {
		tr.Outcome = RejectLowConfidence
		return tr
	}

	sub := build(g, tr)
	tr.Outcome = Accepted
	tr.Subscription = &sub
	return tr
}

func meetsThreshold(score, minConfidence int) bool {
	return score >= minConfidence
}

func build(g MerchantGroup, tr Trace) model.DetectedSubscription {
	txns := g.Transactions
	ids := make([]string, len(txns))
	dates := make([]time.Time, len(txns))

	var sum float64
	minAmt, maxAmt := math.Inf(1), math.Inf(-1)
	for i, t := range txns {
		ids[i] = t.ID
		dates[i] = t.Date
		a := math.Abs(t.Amount)
		sum += a
		minAmt = math.Min(minAmt, a)
		maxAmt = math.Max(maxAmt, a)
	}

	freq := tr.Frequency.Profile.Frequency
	first, last := txns[0].Date, txns[len(txns)-1].Date
	confidence := tr.Score.Total()

	return model.DetectedSubscription{
		ID:                 uuid.NewSHA1(subscriptionNamespace, []byte(g.Key)).String(),
		RecipientName:      g.Key,
		AverageAmount:      round2(sum / float64(len(txns))),
		MinAmount:          round2(minAmt),
		MaxAmount:          round2(maxAmt),
		TransactionIDs:     ids,
		OccurrenceCount:    len(txns),
		FirstSeen:          first,
		LastSeen:           last,
		Confidence:         confidence,
		ConfidenceLevel:    model.LevelFor(confidence),
		BillingFrequency:   freq,
		ExpectedBillingDay: ExpectedBillingDay(dates, freq),
		AmountVariance:     round2(tr.Amounts.Variance * 100),
		AmountType:         tr.Amounts.Type,
		NextExpectedDate:   PredictNextDate(last, freq),
		ScoreBreakdown:     tr.Score,
	}
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
