package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/recur/internal/cli"
	"github.com/theirongolddev/recur/internal/model"
	"github.com/theirongolddev/recur/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagLimit           int
	flagMerchant        string
	flagMinLevel        string
	flagJSON            bool
	flagIncludeReviewed bool
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "List detected recurring charges",
	RunE:  runDetect,
}

func init() {
	addDetectFlags(detectCmd)
	rootCmd.AddCommand(detectCmd)
}

// addDetectFlags is shared by `recur` and `recur detect`.
func addDetectFlags(c *cobra.Command) {
	c.Flags().IntVar(&flagLimit, "limit", 0, "Show at most this many rows (0 = all)")
	c.Flags().StringVarP(&flagMerchant, "merchant", "m", "", "Filter to merchant (substring match)")
	c.Flags().StringVar(&flagMinLevel, "min-level", "low", "Minimum confidence level: low, medium, high")
	c.Flags().BoolVar(&flagJSON, "json", false, "Print detections as JSON")
	c.Flags().BoolVar(&flagIncludeReviewed, "include-reviewed", false, "Include merchants marked as reviewed")
}

func parseLevel(s string) (model.ConfidenceLevel, error) {
	return model.ParseConfidenceLevel(s)
}

func runDetect(cmd *cobra.Command, _ []string) error {
	level, err := parseLevel(flagMinLevel)
	if err != nil {
		return err
	}

	data, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	subs := pipeline.Detect(cmd.Context(), data.Transactions, detectOptions(data, flagIncludeReviewed))
	subs = pipeline.FilterByMerchant(subs, flagMerchant)
	subs = pipeline.FilterByLevel(subs, level)
	if flagLimit > 0 && len(subs) > flagLimit {
		subs = subs[:flagLimit]
	}

	if flagJSON {
		if subs == nil {
			subs = []model.DetectedSubscription{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(subs)
	}

	if len(data.Transactions) == 0 {
		fmt.Println("\n  No transactions found.")
		fmt.Println("  Export CSV statements from your bank into the input directory.")
		return nil
	}
	if len(subs) == 0 {
		fmt.Println("\n  No recurring charges detected.")
		return nil
	}

	now := time.Now()
	cur := currency()
	rows := make([][]string, 0, len(subs))
	for _, s := range subs {
		amount := cli.FormatAmount(s.AverageAmount, cur)
		if s.AmountType == model.AmountVariable {
			amount = "~" + amount
		}
		rows = append(rows, []string{
			s.RecipientName,
			amount,
			string(s.BillingFrequency),
			cli.FormatBillingDay(s.ExpectedBillingDay, s.BillingFrequency),
			fmt.Sprintf("%s (%s)", cli.FormatDate(s.NextExpectedDate), cli.FormatRelativeDays(s.NextExpectedDate, now)),
			cli.RenderConfidence(s.Confidence, s.ConfidenceLevel),
		})
	}

	stats := pipeline.Summarize(subs)
	rows = append(rows,
		[]string{"---"},
		[]string{"TOTAL / MONTH", cli.FormatAmount(stats.MonthlyCost, cur), "", "", "", ""},
	)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RECURRING CHARGES  %d found", len(subs))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Merchant", "Amount", "Cadence", "Bills on", "Next", "Confidence"},
		Rows:    rows,
	}))

	printLoadWarnings(data)
	return nil
}
