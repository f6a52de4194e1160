package recurrence

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Leading bank boilerplate. Each pattern strips at most once per pass.
var prefixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:kortköp|kortkop|köp|kop|card purchase|purchase|pos)\s+`),
	regexp.MustCompile(`(?i)^(?:autogiro|autogirering|ag|direct debit|direktdebitering)\s+`),
	regexp.MustCompile(`(?i)^(?:bankgiro|plusgiro|bg|pg)\s+`),
	regexp.MustCompile(`(?i)^swish(?:\s+(?:betalning|payment|till|to))?\s+`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s*`),
	regexp.MustCompile(`^\*{4}\d{4}\s*`),
	regexp.MustCompile(`(?i)^[a-z]{2}\d{6}\s*`),
}

// Trailing reference noise.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\s*\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`\s*/\d{2}-\d{2}-\d{2}$`),
	regexp.MustCompile(`(?i)\s+[a-z]{2,3}\d{4,}$`),
	regexp.MustCompile(`(?i)\s+[a-z]\d{4,}$`),
	regexp.MustCompile(`\s+\d{3,4}$`),
	regexp.MustCompile(`\s*\*+$`),
}

// Normalize reduces a raw statement description to a display-cased merchant
// key. Stripping repeats until no pattern matches, so Normalize is idempotent.
// If stripping leaves nothing, the trimmed input is returned unchanged; the
// result is only empty when the input is blank.
func Normalize(desc string) string {
	original := strings.TrimSpace(desc)
	if original == "" {
		return ""
	}

	s := collapseSpaces(original)
	for {
		next := collapseSpaces(stripSuffixes(stripPrefixes(s)))
		if next == s {
			break
		}
		s = next
	}

	if s == "" {
		return original
	}
	return titleCase(s)
}

// stripPrefixes applies every prefix pattern at most once, retrying the
// unused ones after each hit so their order in the table doesn't matter.
func stripPrefixes(s string) string {
	used := make([]bool, len(prefixPatterns))
	for {
		matched := false
		for i, re := range prefixPatterns {
			if used[i] {
				continue
			}
			if loc := re.FindStringIndex(s); loc != nil {
				s = s[loc[1]:]
				used[i] = true
				matched = true
			}
		}
		if !matched {
			return s
		}
	}
}

func stripSuffixes(s string) string {
	for _, re := range suffixPatterns {
		s = re.ReplaceAllString(s, "")
	}
	return s
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// titleCase capitalizes the first rune of every space-separated token and
// lowercases the rest.
func titleCase(s string) string {
	lower := cases.Lower(language.Und) // Casers are stateful; one per call
	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(tok)
		tokens[i] = string(unicode.ToUpper(r)) + lower.String(tok[size:])
	}
	return strings.Join(tokens, " ")
}
