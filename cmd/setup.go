package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/recur/internal/config"
	"github.com/theirongolddev/recur/internal/source"
	"github.com/theirongolddev/recur/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appConfig

	inputDir := flagInputDir
	if inputDir == "" {
		inputDir = cfg.General.InputDir
	}
	currency := cfg.General.Currency
	themeName := cfg.Appearance.Theme

	if err := tui.NewSetupForm(&inputDir, &currency, &themeName).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing saved.")
			return nil
		}
		return fmt.Errorf("running setup form: %w", err)
	}

	cfg.General.InputDir = strings.TrimSpace(inputDir)
	if c := strings.TrimSpace(currency); c != "" {
		cfg.General.Currency = c
	}
	cfg.Appearance.Theme = themeName

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	files, _ := source.ScanDir(config.ExpandHome(cfg.General.InputDir))
	fmt.Println()
	fmt.Printf("  Found %d statement files (%d accounts) in %s\n",
		len(files), source.CountAccounts(files), cfg.General.InputDir)
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `recur setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
