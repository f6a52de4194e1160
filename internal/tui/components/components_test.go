package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{80, 3}, {100, 4}, {7, 7}, {10, 3}} {
		widths := LayoutRow(tc.total, tc.n)
		if len(widths) != tc.n {
			t.Fatalf("LayoutRow(%d, %d) len = %d", tc.total, tc.n, len(widths))
		}
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != tc.total {
			t.Errorf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
		if widths[0] < widths[len(widths)-1] {
			t.Errorf("LayoutRow(%d, %d) = %v, remainder should go first", tc.total, tc.n, widths)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestSparklineScalesBetweenMinAndMax(t *testing.T) {
	got := stripStyle(Sparkline([]float64{100, 200, 150}, lipgloss.Color("2")))
	if got != "▁█▄" {
		t.Errorf("Sparkline = %q, want %q", got, "▁█▄")
	}

	flat := stripStyle(Sparkline([]float64{99, 99, 99}, lipgloss.Color("2")))
	if flat != "▄▄▄" {
		t.Errorf("flat Sparkline = %q, want mid-height blocks", flat)
	}

	if Sparkline(nil, lipgloss.Color("2")) != "" {
		t.Error("empty Sparkline should be empty")
	}
}

func TestTailSparklineKeepsMostRecent(t *testing.T) {
	got := stripStyle(TailSparkline([]float64{1, 2, 3, 4, 5, 6}, 3, lipgloss.Color("2")))
	if len([]rune(got)) != 3 {
		t.Fatalf("TailSparkline width = %d, want 3", len([]rune(got)))
	}
	if !strings.HasPrefix(got, "▁") || !strings.HasSuffix(got, "█") {
		t.Errorf("TailSparkline = %q, want rising tail", got)
	}
}

func TestStatusBarFillsWidth(t *testing.T) {
	bar := RenderStatusBar(60, "[q]uit", "3 subscriptions")
	if w := lipgloss.Width(bar); w != 60 {
		t.Errorf("status bar width = %d, want 60", w)
	}
}

// stripStyle drops ANSI escapes so tests compare glyphs only.
func stripStyle(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
