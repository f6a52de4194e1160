// Package source discovers and parses CSV bank statement exports.
package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/recur/internal/model"
)

// ErrNoColumns means the header row lacks a date, description or amount
// column.
var ErrNoColumns = errors.New("header has no date, description and amount columns")

// rowNamespace seeds IDs for rows that carry none of their own.
var rowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/theirongolddev/recur/row"))

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"01/02/2006",
	time.RFC3339,
}

// ParseResult holds the output of parsing a single statement file.
type ParseResult struct {
	Transactions []model.Transaction
	ParseErrors  int // rows skipped because a field didn't parse
	Err          error
}

// ParseFile reads one CSV export. Rows whose date or amount can't be read
// are skipped and counted; only file-level problems set Err.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReader(f)
	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ParseResult{Err: err}
	}
	first = strings.TrimPrefix(first, "\ufeff")
	if strings.TrimSpace(first) == "" {
		return ParseResult{}
	}

	r := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	r.Comma = sniffDelimiter(first)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return ParseResult{Err: fmt.Errorf("reading header: %w", err)}
	}
	cols, ok := mapColumns(header)
	if !ok {
		return ParseResult{Err: fmt.Errorf("%s: %w", df.Path, ErrNoColumns)}
	}

	var (
		txns        []model.Transaction
		parseErrors int
	)

	for row := 1; ; row++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				parseErrors++
				continue
			}
			return ParseResult{Err: err}
		}

		tx, ok := parseRecord(rec, cols, df.Account, row)
		if !ok {
			parseErrors++
			continue
		}
		txns = append(txns, tx)
	}

	return ParseResult{
		Transactions: txns,
		ParseErrors:  parseErrors,
	}
}

func parseRecord(rec []string, cols columns, account string, row int) (model.Transaction, bool) {
	field := func(i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	date, err := parseDate(field(cols.date))
	if err != nil {
		return model.Transaction{}, false
	}
	amount, err := parseAmount(field(cols.amount))
	if err != nil {
		return model.Transaction{}, false
	}
	desc := field(cols.description)

	id := field(cols.id)
	if id == "" {
		key := fmt.Sprintf("%s|%d|%s|%s|%s", account, row, date.Format("2006-01-02"), desc, amount.String())
		id = uuid.NewSHA1(rowNamespace, []byte(key)).String()
	}

	return model.Transaction{
		ID:          id,
		Date:        date,
		Description: desc,
		Amount:      amount.InexactFloat64(),
		Account:     account,
	}, true
}

// mapColumns locates each role in the header row.
func mapColumns(header []string) (columns, bool) {
	cols := columns{date: -1, description: -1, amount: -1, id: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.Trim(h, `"`)))
		switch {
		case cols.date < 0 && contains(dateHeaders, name):
			cols.date = i
		case cols.description < 0 && contains(descriptionHeaders, name):
			cols.description = i
		case cols.amount < 0 && contains(amountHeaders, name):
			cols.amount = i
		case cols.id < 0 && contains(idHeaders, name):
			cols.id = i
		}
	}
	return cols, cols.date >= 0 && cols.description >= 0 && cols.amount >= 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// sniffDelimiter picks whichever of ; tab , appears most often outside
// quotes in the header line. Comma wins when none appear.
func sniffDelimiter(line string) rune {
	counts := map[rune]int{}
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case !inQuotes && (r == ';' || r == '\t' || r == ','):
			counts[r]++
		}
	}

	best := ','
	for _, r := range []rune{';', '\t'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount reads amounts as banks export them: "-1 234,50", "1,234.50",
// "−99,00 kr", "(12.00)". With both separators present the later one is the
// decimal point; a lone comma is a decimal comma unless it repeats.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '\'':
			return -1
		case r == '\u2212':
			return '-'
		}
		return r
	}, s)
	clean = strings.TrimFunc(clean, unicode.IsLetter)

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	if clean == "" {
		return decimal.Zero, errors.New("empty amount")
	}

	lastComma := strings.LastIndex(clean, ",")
	lastDot := strings.LastIndex(clean, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(clean, ",") == 1 {
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
