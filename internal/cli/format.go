// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/recur/internal/model"
)

// FormatAmount formats a money value with two decimals, thousands
// separators and the configured currency. Single-symbol currencies ("$",
// "€") are prefixed, codes and words ("kr", "SEK") are suffixed.
// e.g., (1234.5, "kr") -> "1,234.50 kr", (-9.99, "$") -> "-$9.99"
func FormatAmount(v float64, currency string) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	num := fmt.Sprintf("%s.%02d", FormatNumber(whole.IntPart()), cents)

	switch {
	case currency == "":
		return sign + num
	case isSymbol(currency):
		return sign + currency + num
	default:
		return sign + num + " " + currency
	}
}

func isSymbol(currency string) bool {
	r, size := utf8.DecodeRuneInString(currency)
	return size == len(currency) && !unicode.IsLetter(r)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

// FormatBillingDay renders an expected billing day: a weekday for weekly
// cadences, an ordinal day of month otherwise.
func FormatBillingDay(day int, freq model.Frequency) string {
	if freq.UsesWeekday() {
		return FormatDayOfWeek(day)
	}
	return ordinal(day)
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// FormatDate formats a calendar date, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatRelativeDays describes how far d is from now in whole days.
// e.g., "today", "in 3d", "2d ago"
func FormatRelativeDays(d, now time.Time) string {
	days := int(civil(d).Sub(civil(now)).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days > 0:
		return fmt.Sprintf("in %dd", days)
	default:
		return fmt.Sprintf("%dd ago", -days)
	}
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
