package recurrence

import "github.com/theirongolddev/recur/internal/model"

// Outcome names the filter that decided a group's fate.
type Outcome string

const (
	Accepted                 Outcome = "accepted"
	RejectTooFewTransactions Outcome = "too_few_transactions"
	RejectNoFrequency        Outcome = "no_frequency"
	RejectTooFewOccurrences  Outcome = "too_few_occurrences"
	RejectAmountMismatch     Outcome = "amount_mismatch"
	RejectLowConfidence      Outcome = "low_confidence"
)

// Trace records the intermediate metrics for one merchant group. Fields past
// the rejecting filter are left zero.
type Trace struct {
	Key          string
	Transactions int
	Gaps         []int
	Frequency    FrequencyMatch
	Amounts      AmountAnalysis
	Score        model.ScoreBreakdown
	Outcome      Outcome
	Subscription *model.DetectedSubscription
}

// Explain evaluates the single group whose key matches merchant, which may be
// a raw description or an already normalized key. The reviewed set and the
// group cap are ignored. Returns false if no expense normalizes to that key.
func Explain(txns []model.Transaction, merchant string, opts Options) (Trace, bool) {
	opts = opts.withDefaults()
	key := Normalize(merchant)
	if key == "" {
		return Trace{}, false
	}

	for _, g := range Group(txns) {
		if g.Key == key {
			return evaluate(g, opts.Tuning), true
		}
	}
	return Trace{}, false
}
