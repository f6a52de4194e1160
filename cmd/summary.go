package cmd

import (
	"fmt"

	"github.com/theirongolddev/recur/internal/cli"
	"github.com/theirongolddev/recur/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Subscription spend by billing cadence",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&flagIncludeReviewed, "include-reviewed", false, "Include merchants marked as reviewed")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	data, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	subs := pipeline.Detect(cmd.Context(), data.Transactions, detectOptions(data, flagIncludeReviewed))
	if len(subs) == 0 {
		fmt.Println("\n  No recurring charges detected.")
		return nil
	}

	stats := pipeline.Summarize(subs)
	cur := currency()

	title := "SUBSCRIPTIONS  All history"
	if flagDays > 0 {
		title = fmt.Sprintf("SUBSCRIPTIONS  Last %dd", flagDays)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Subscriptions", cli.FormatNumber(int64(stats.Subscriptions))},
			{"High confidence", cli.FormatNumber(int64(stats.High))},
			{"Medium confidence", cli.FormatNumber(int64(stats.Medium))},
			{"Low confidence", cli.FormatNumber(int64(stats.Low))},
			{"---"},
			{"Fixed amount", cli.FormatNumber(int64(stats.Fixed))},
			{"Variable amount", cli.FormatNumber(int64(stats.Variable))},
			{"Charges covered", cli.FormatNumber(int64(stats.Charges))},
			{"---"},
			{"Per month", cli.FormatAmount(stats.MonthlyCost, cur)},
			{"Per year", cli.FormatAmount(stats.YearlyCost, cur)},
		},
	}))

	freqs := pipeline.AggregateFrequencies(subs)
	maxCost := 0.0
	for _, f := range freqs {
		maxCost = max(maxCost, f.MonthlyCost)
	}
	rows := make([][]string, 0, len(freqs))
	for _, f := range freqs {
		rows = append(rows, []string{
			string(f.Frequency),
			cli.FormatNumber(int64(f.Subscriptions)),
			cli.FormatAmount(f.MonthlyCost, cur),
			fmt.Sprintf("%.1f%%", f.SharePercent),
			cli.RenderShareBar(f.MonthlyCost, maxCost, 20),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Cadence (monthly equivalent)",
		Headers: []string{"Cadence", "Count", "Monthly", "Share", ""},
		Rows:    rows,
	}))

	printLoadWarnings(data)
	return nil
}
