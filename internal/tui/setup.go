package tui

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/recur/internal/config"
	"github.com/theirongolddev/recur/internal/tui/theme"
)

// setupValues is bound to the first-run form fields.
type setupValues struct {
	InputDir string
	Currency string
	Theme    string
}

func defaultSetupValues(inputDir string) setupValues {
	cfg, _ := config.Load()
	if inputDir == "" {
		inputDir = config.GetInputDir(cfg)
	}
	return setupValues{
		InputDir: inputDir,
		Currency: cfg.General.Currency,
		Theme:    cfg.Appearance.Theme,
	}
}

// NewSetupForm builds the first-run form writing into the given fields.
// `recur setup` runs it standalone; the TUI embeds it.
func NewSetupForm(inputDir, currency, themeName *string) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to recur").
				Description("Point recur at a folder of bank CSV exports to find your subscriptions."),
			huh.NewInput().
				Title("Statement directory").
				Placeholder("~/Documents/statements").
				Value(inputDir).
				Validate(validateDir),
			huh.NewInput().
				Title("Currency label").
				Description(`Printed after amounts ("kr", "SEK") or before them ("$", "€").`).
				Value(currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(themeName),
		),
	)
}

func newSetupForm(vals *setupValues) *huh.Form {
	return NewSetupForm(&vals.InputDir, &vals.Currency, &vals.Theme)
}

func validateDir(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("a statement directory is required")
	}
	info, err := os.Stat(config.ExpandHome(s))
	if err != nil {
		return errors.New("directory not found")
	}
	if !info.IsDir() {
		return errors.New("not a directory")
	}
	return nil
}

// saveSetup merges the form values into the config file and applies the theme.
func saveSetup(vals setupValues) error {
	cfg, _ := config.Load()
	cfg.General.InputDir = strings.TrimSpace(vals.InputDir)
	if c := strings.TrimSpace(vals.Currency); c != "" {
		cfg.General.Currency = c
	}
	cfg.Appearance.Theme = vals.Theme
	theme.SetActive(vals.Theme)
	return config.Save(cfg)
}
