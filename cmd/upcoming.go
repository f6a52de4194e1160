package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/recur/internal/cli"
	"github.com/theirongolddev/recur/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagWithin int

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Predicted charges in the coming days",
	RunE:  runUpcoming,
}

func init() {
	upcomingCmd.Flags().IntVarP(&flagWithin, "within", "w", 30, "Look-ahead window in days")
	upcomingCmd.Flags().BoolVar(&flagIncludeReviewed, "include-reviewed", false, "Include merchants marked as reviewed")
	rootCmd.AddCommand(upcomingCmd)
}

func runUpcoming(cmd *cobra.Command, _ []string) error {
	if flagWithin < 1 {
		return errors.New("--within must be at least 1 day")
	}

	data, err := loadData(cmd.Context())
	if err != nil {
		return err
	}

	subs := pipeline.Detect(cmd.Context(), data.Transactions, detectOptions(data, flagIncludeReviewed))
	now := time.Now()
	charges := pipeline.Upcoming(subs, now, flagWithin)

	if len(charges) == 0 {
		fmt.Printf("\n  No charges expected in the next %d days.\n", flagWithin)
		return nil
	}

	cur := currency()
	var total float64
	rows := make([][]string, 0, len(charges)+2)
	for _, c := range charges {
		total += c.Amount
		rows = append(rows, []string{
			cli.FormatDate(c.Date),
			cli.FormatRelativeDays(c.Date, now),
			c.RecipientName,
			cli.FormatAmount(c.Amount, cur),
			string(c.Frequency),
			fmt.Sprintf("%d", c.Confidence),
		})
	}
	rows = append(rows, []string{"---"}, []string{"TOTAL", "", "", cli.FormatAmount(total, cur), "", ""})

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("UPCOMING  Next %dd", flagWithin)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "When", "Merchant", "Amount", "Cadence", "Conf"},
		Rows:    rows,
	}))

	printLoadWarnings(data)
	return nil
}
