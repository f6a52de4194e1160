package cmd

import (
	"github.com/theirongolddev/recur/internal/config"
	"github.com/theirongolddev/recur/internal/tui"
	"github.com/theirongolddev/recur/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse detected subscriptions interactively",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagIncludeReviewed, "include-reviewed", false, "Include merchants marked as reviewed")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(appConfig.Appearance.Theme)

	// Force TrueColor so background styling survives terminals lipgloss misdetects.
	lipgloss.SetColorProfile(termenv.TrueColor)

	dir := config.ExpandHome(flagInputDir)
	if dir == "" {
		dir = config.GetInputDir(appConfig)
	}

	opts := detectOptions(nil, flagIncludeReviewed)
	return tui.Run(cmd.Context(), tui.Options{
		InputDir:        dir,
		Days:            flagDays,
		Currency:        currency(),
		Detect:          opts,
		IncludeReviewed: flagIncludeReviewed || !appConfig.Detection.SkipReviewed,
		NeedSetup:       dir == "" || !config.Exists(),
	})
}
