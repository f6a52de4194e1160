package cmd

import (
	"fmt"

	"github.com/theirongolddev/recur/internal/config"
	"github.com/theirongolddev/recur/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Cache:       %s\n", pipeline.CachePath())
	fmt.Println()

	fmt.Println("  [General]")
	if dir := config.GetInputDir(cfg); dir != "" {
		fmt.Printf("    Input directory: %s\n", dir)
	} else {
		fmt.Println("    Input directory: not configured")
	}
	fmt.Printf("    Currency:        %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Detection]")
	tuning := config.DefaultTuning()
	fmt.Printf("    Min confidence:  %d\n", tuning.MinConfidence)
	fmt.Printf("    Skip reviewed:   %v\n", cfg.Detection.SkipReviewed)
	if cfg.Detection.Workers > 0 {
		fmt.Printf("    Workers:         %d\n", cfg.Detection.Workers)
	}
	if cfg.Detection.MaxGroups > 0 {
		fmt.Printf("    Max groups:      %d\n", cfg.Detection.MaxGroups)
	}
	for _, p := range tuning.Profiles {
		fmt.Printf("    %-10s %3.0fd ± %2.0fd, at least %d charges\n",
			p.Frequency, p.ExpectedGapDays, p.ToleranceDays, p.MinOccurrences)
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSec)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `recur setup` to reconfigure.")
	return nil
}
