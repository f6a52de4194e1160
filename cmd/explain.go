package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/recur/internal/cli"
	"github.com/theirongolddev/recur/internal/recurrence"

	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <merchant>",
	Short: "Show why a merchant was or was not detected",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

var outcomeText = map[recurrence.Outcome]string{
	recurrence.Accepted:                 "detected",
	recurrence.RejectTooFewTransactions: "rejected: only one charge",
	recurrence.RejectNoFrequency:        "rejected: no billing cadence fits the gaps",
	recurrence.RejectTooFewOccurrences:  "rejected: too few charges for the cadence",
	recurrence.RejectAmountMismatch:     "rejected: fewer than half the amounts match",
	recurrence.RejectLowConfidence:      "rejected: confidence below threshold",
}

func runExplain(cmd *cobra.Command, args []string) error {
	merchant := strings.Join(args, " ")

	data, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	opts := detectOptions(data, true)
	tr, ok := recurrence.Explain(data.Transactions, merchant, opts)
	if !ok {
		fmt.Printf("\n  No expenses match %q (normalized %q).\n", merchant, recurrence.Normalize(merchant))
		return nil
	}

	cur := currency()
	rows := [][]string{
		{"Merchant key", tr.Key},
		{"Charges", strconv.Itoa(tr.Transactions)},
	}
	if _, reviewed := data.Reviewed[tr.Key]; reviewed {
		rows = append(rows, []string{"Reviewed", "yes (hidden from detect)"})
	}

	if len(tr.Gaps) > 0 {
		rows = append(rows, []string{"Gaps (days)", joinInts(tr.Gaps)})
	}
	if tr.Frequency.Matched {
		p := tr.Frequency.Profile
		rows = append(rows,
			[]string{"---"},
			[]string{"Cadence", fmt.Sprintf("%s (expected %.0fd ± %.0fd)", p.Frequency, p.ExpectedGapDays, p.ToleranceDays)},
			[]string{"Median gap", fmt.Sprintf("%.1fd", tr.Frequency.MedianGap)},
			[]string{"On-time gaps", cli.FormatPercent(tr.Frequency.GapConsistency)},
			[]string{"Min charges", strconv.Itoa(p.MinOccurrences)},
		)
	} else if len(tr.Gaps) > 0 {
		rows = append(rows, []string{"Cadence", "none"})
	}
	if tr.Amounts.Type != "" {
		rows = append(rows,
			[]string{"---"},
			[]string{"Core amount", cli.FormatAmount(tr.Amounts.CoreAmount, cur)},
			[]string{"Variance", cli.FormatPercent(tr.Amounts.Variance)},
			[]string{"Tolerance", cli.FormatPercent(tr.Amounts.Tolerance)},
			[]string{"Matching", fmt.Sprintf("%d of %d", tr.Amounts.MatchingCount, tr.Transactions)},
			[]string{"Amount type", string(tr.Amounts.Type)},
		)
	}
	if tr.Score.Total() > 0 {
		rows = append(rows,
			[]string{"---"},
			[]string{"Amount", cli.RenderScoreBar(tr.Score.Amount, 30, 15)},
			[]string{"Timing", cli.RenderScoreBar(tr.Score.Timing, 30, 15)},
			[]string{"Occurrence", cli.RenderScoreBar(tr.Score.Occurrence, 20, 10)},
			[]string{"Clarity", cli.RenderScoreBar(tr.Score.Clarity, 20, 10)},
			[]string{"Confidence", fmt.Sprintf("%d (threshold %d)", tr.Score.Total(), opts.Tuning.MinConfidence)},
		)
	}
	if s := tr.Subscription; s != nil {
		rows = append(rows,
			[]string{"---"},
			[]string{"Bills on", cli.FormatBillingDay(s.ExpectedBillingDay, s.BillingFrequency)},
			[]string{"Next charge", cli.FormatDate(s.NextExpectedDate)},
		)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("EXPLAIN  " + tr.Key))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Step", "Value"},
		Rows:    rows,
	}))
	fmt.Printf("\n  %s\n", outcomeText[tr.Outcome])
	return nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
