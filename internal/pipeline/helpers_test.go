package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeCSV writes a statement export under dir and returns its path.
func writeCSV(tb testing.TB, dir, name string, rows ...string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	body := "date,description,amount\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		tb.Fatal(err)
	}
	return path
}

// monthlyRows renders n monthly charges starting at start.
func monthlyRows(start time.Time, desc string, amount float64, n int) []string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf("%s,%s,%.2f", start.AddDate(0, i, 0).Format("2006-01-02"), desc, amount)
	}
	return rows
}
