package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/recur/internal/tui/theme"
)

// ProgressBar renders the loading bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = min(max(pct, 0), 1)
	filled := int(pct * float64(width))

	barColor := t.Cyan
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(barColor).Render(strings.Repeat("█", filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render(strings.Repeat("░", width-filled)))
	b.WriteString(" ")
	b.WriteString(lipgloss.NewStyle().Foreground(barColor).Bold(true).Render(fmt.Sprintf("%.0f%%", pct*100)))
	return b.String()
}

// ColorForShare returns red/orange/yellow/green as a sub-score falls short
// of its maximum.
func ColorForShare(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 0.8:
		return t.Green
	case pct >= 0.5:
		return t.Yellow
	case pct >= 0.25:
		return t.Orange
	default:
		return t.Red
	}
}

// ScoreBar renders one labeled confidence sub-score, e.g.
// "Timing     ████████░░  25/30".
func ScoreBar(label string, score, outOf, labelW, barWidth int) string {
	t := theme.Active

	pct := 0.0
	if outOf > 0 {
		pct = min(max(float64(score)/float64(outOf), 0), 1)
	}

	bar := progress.New(
		progress.WithSolidFill(string(ColorForShare(pct))),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	return lipgloss.NewStyle().Foreground(t.TextMuted).Render(fmt.Sprintf("%-*s", labelW, label)) +
		" " +
		bar.ViewAs(pct) +
		" " +
		lipgloss.NewStyle().Foreground(t.TextPrimary).Render(fmt.Sprintf("%2d/%d", score, outOf))
}
