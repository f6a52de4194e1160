package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/recur/internal/cli"
	"github.com/theirongolddev/recur/internal/pipeline"
	"github.com/theirongolddev/recur/internal/recurrence"
	"github.com/theirongolddev/recur/internal/store"

	"github.com/spf13/cobra"
)

var flagReviewNote string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Maintain the set of merchants you have already reviewed",
	Long:  "Reviewed merchants are hidden from detect, summary, upcoming and the TUI unless --include-reviewed is set.",
}

var reviewAddCmd = &cobra.Command{
	Use:   "add <merchant>",
	Short: "Mark a merchant as reviewed",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReviewAdd,
}

var reviewRemoveCmd = &cobra.Command{
	Use:     "remove <merchant>",
	Aliases: []string{"rm"},
	Short:   "Show a reviewed merchant again",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runReviewRemove,
}

var reviewListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List reviewed merchants",
	RunE:    runReviewList,
}

func init() {
	reviewAddCmd.Flags().StringVar(&flagReviewNote, "note", "", "Free-form note stored with the merchant")

	reviewCmd.AddCommand(reviewAddCmd, reviewRemoveCmd, reviewListCmd)
	rootCmd.AddCommand(reviewCmd)
}

// merchantKey normalizes the arguments the same way detection keys merchants.
func merchantKey(args []string) (string, error) {
	key := recurrence.Normalize(strings.Join(args, " "))
	if key == "" {
		return "", errors.New("merchant name is empty after normalization")
	}
	return key, nil
}

func openCache() (*store.Cache, error) {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return nil, fmt.Errorf("opening review store: %w", err)
	}
	return cache, nil
}

func runReviewAdd(_ *cobra.Command, args []string) error {
	key, err := merchantKey(args)
	if err != nil {
		return err
	}
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.MarkReviewed(key, flagReviewNote); err != nil {
		return err
	}
	fmt.Printf("  Marked %s as reviewed\n", key)
	return nil
}

func runReviewRemove(_ *cobra.Command, args []string) error {
	key, err := merchantKey(args)
	if err != nil {
		return err
	}
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.UnmarkReviewed(key); err != nil {
		if errors.Is(err, store.ErrNotReviewed) {
			fmt.Printf("  %s was not marked as reviewed\n", key)
			return nil
		}
		return err
	}
	fmt.Printf("  %s will be reported again\n", key)
	return nil
}

func runReviewList(_ *cobra.Command, _ []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	reviewed, err := cache.ListReviewed()
	if err != nil {
		return err
	}
	if len(reviewed) == 0 {
		fmt.Println("\n  No reviewed merchants.")
		return nil
	}

	rows := make([][]string, len(reviewed))
	for i, r := range reviewed {
		rows[i] = []string{r.Key, cli.FormatDate(r.ReviewedAt), r.Note}
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Reviewed Merchants",
		Headers: []string{"Merchant", "Reviewed", "Note"},
		Rows:    rows,
	}))
	return nil
}
