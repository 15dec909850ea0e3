package digest

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonWordChars = regexp.MustCompile(`[^0-9a-zA-Z_ ]+`)
	spaceRuns    = regexp.MustCompile(` +`)
)

// stopwords are dropped from tokenized labels
var stopwords = map[string]struct{}{
	"to":    {},
	"in":    {},
	"the":   {},
	"by":    {},
	"of":    {},
	"at":    {},
	"":      {},
	"vault": {},
}

// NormalizeWord lowercases s, drops everything outside [0-9a-zA-Z_ ],
// collapses runs of spaces and trims.
func NormalizeWord(s string) string {
	s = strings.ToLower(s)
	s = nonWordChars.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeLabel normalizes a whole label as a single word
func NormalizeLabel(label string) string {
	return NormalizeWord(label)
}

// Tokenize splits the normalized label on single spaces and removes stopwords
func Tokenize(label string) []string {
	parts := strings.Split(NormalizeLabel(label), " ")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		if _, stop := stopwords[p]; stop {
			continue
		}
		words = append(words, p)
	}
	return words
}

// TitleLabel upper-cases the first letter after every non-letter and
// lower-cases the rest, so "hot_wallet x2y" becomes "Hot_Wallet X2Y".
func TitleLabel(label string) string {
	caser := cases.Title(language.Und)

	var b strings.Builder
	b.Grow(len(label))
	start := -1
	for i, r := range label {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(label[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(label[start:]))
	}
	return b.String()
}
