package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/recur/internal/model"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		v        float64
		currency string
		want     string
	}{
		{99, "kr", "99.00 kr"},
		{1234.5, "kr", "1,234.50 kr"},
		{1234567.891, "SEK", "1,234,567.89 SEK"},
		{9.99, "$", "$9.99"},
		{-9.99, "$", "-$9.99"},
		{0.005, "€", "€0.01"},
		{-0.001, "", "0.00"},
		{42, "", "42.00"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.v, tt.currency); got != tt.want {
			t.Errorf("FormatAmount(%v, %q) = %q, want %q", tt.v, tt.currency, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"}, {999, "999"}, {1000, "1,000"}, {1234567, "1,234,567"}, {-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatBillingDay(t *testing.T) {
	tests := []struct {
		day  int
		freq model.Frequency
		want string
	}{
		{1, model.Weekly, "Mon"},
		{0, model.Biweekly, "Sun"},
		{1, model.Monthly, "1st"},
		{2, model.Monthly, "2nd"},
		{3, model.Quarterly, "3rd"},
		{11, model.Monthly, "11th"},
		{12, model.Monthly, "12th"},
		{13, model.Monthly, "13th"},
		{22, model.Annual, "22nd"},
		{31, model.Monthly, "31st"},
	}
	for _, tt := range tests {
		if got := FormatBillingDay(tt.day, tt.freq); got != tt.want {
			t.Errorf("FormatBillingDay(%d, %s) = %q, want %q", tt.day, tt.freq, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Time{}); got != "-" {
		t.Errorf("FormatDate(zero) = %q, want -", got)
	}
	if got := FormatDate(time.Date(2024, 7, 3, 15, 0, 0, 0, time.UTC)); got != "2024-07-03" {
		t.Errorf("FormatDate = %q, want 2024-07-03", got)
	}
}

func TestFormatRelativeDays(t *testing.T) {
	now := time.Date(2024, 7, 1, 23, 0, 0, 0, time.UTC)
	tests := []struct {
		d    time.Time
		want string
	}{
		{time.Date(2024, 7, 1, 1, 0, 0, 0, time.UTC), "today"},
		{time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), "in 3d"},
		{time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC), "2d ago"},
	}
	for _, tt := range tests {
		if got := FormatRelativeDays(tt.d, now); got != tt.want {
			t.Errorf("FormatRelativeDays(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.4567); got != "45.7%" {
		t.Errorf("FormatPercent = %q, want 45.7%%", got)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Subscriptions",
		Headers: []string{"Merchant", "Amount"},
		Rows: [][]string{
			{"Försäkring", "600.00 kr"},
			{"---"},
			{"Netflix", "99.00 kr"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("got %d lines, want 8:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Försäkring") || !strings.Contains(out, " 99.00 kr ") {
		t.Errorf("missing cells:\n%s", out)
	}

	// Every bordered line has the same display width despite multibyte names.
	want := len([]rune(lines[1]))
	for _, l := range lines[2:] {
		if got := len([]rune(l)); got != want {
			t.Errorf("line %q has width %d, want %d", l, got, want)
		}
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q, want empty", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("RenderSparkline(nil) = %q", got)
	}
	if got := RenderSparkline([]float64{0, 50, 100}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q, want ▁▄█", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Errorf("RenderSparkline(zeros) = %q, want ▁▁", got)
	}
}

func TestRenderScoreBar(t *testing.T) {
	got := RenderScoreBar(15, 30, 10)
	if !strings.HasSuffix(got, " 15/30") {
		t.Errorf("RenderScoreBar = %q", got)
	}
	if strings.Count(got, "█") != 5 || strings.Count(got, "░") != 5 {
		t.Errorf("RenderScoreBar fill wrong: %q", got)
	}
}
