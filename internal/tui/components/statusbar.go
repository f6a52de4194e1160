package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/recur/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, status on
// the right.
func RenderStatusBar(width int, hints, status string) string {
	t := theme.Active

	left := " " + hints
	right := status + " "
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width).
		Render(left + strings.Repeat(" ", gap) + right)
}
