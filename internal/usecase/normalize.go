package usecase

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison form of a journal or publisher name:
// NFKC, diacritics removed, case-folded, "&" spelled "and", apostrophes dropped,
// other punctuation and symbols turned into spaces, whitespace collapsed.
//
// Every equality check and lookup in this package goes through Normalize.
// It is pure and safe for concurrent use (transformers are built per call).
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	s := norm.NFKC.String(name)

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}

	s = cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '&':
			b.WriteString(" and ")
		case r == '\'' || r == '’' || r == '‘':
			// "Women's" -> "womens"
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.M, r):
			// spacing and enclosing marks (Mc, Me) stay attached to their letter
			b.WriteRune(r)
		default:
			// punctuation, symbols, whitespace and control characters
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
