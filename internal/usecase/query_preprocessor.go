package usecase

import (
	"regexp"
	"strings"
)

// issnPattern matches "0028-0836", "00280836" and "1234-567X" (after trimming)
var issnPattern = regexp.MustCompile(`^(\d{4})-?(\d{3}[\dXx])$`)

// queryNoiseWords are generic words that say nothing about which journal is meant.
// They are ignored by the token-overlap half of the score, never by the edit ratio.
var queryNoiseWords = map[string]bool{
	// Articles, conjunctions, prepositions
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true,
	// Generic venue words
	"journal": true, "journals": true, "jour": true, "j": true,
	"revue": true, "revista": true, "zeitschrift": true,
	"de": true, "la": true, "der": true, "die": true, "et": true,
}

// contentTokens splits a normalized name into the words that identify it.
// When every word is noise ("The Journal") the full word list is returned instead.
func contentTokens(normalized string) []string {
	words := strings.Fields(normalized)

	tokens := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if queryNoiseWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}

	if len(tokens) == 0 {
		return dedupe(words)
	}
	return tokens
}

func dedupe(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// normalizeISSN returns the 8-character upper-case form of an ISSN string,
// or "" when s is not shaped like an ISSN. The check digit is not verified.
func normalizeISSN(s string) string {
	m := issnPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1] + m[2])
}

// queryISSN returns the ISSN a query consists of, if it is one with a valid check digit
func queryISSN(query string) (string, bool) {
	issn := normalizeISSN(query)
	if issn == "" || !validISSNCheckDigit(issn) {
		return "", false
	}
	return issn, true
}

// validISSNCheckDigit verifies the mod-11 check digit of an 8-character ISSN
func validISSNCheckDigit(issn string) bool {
	if len(issn) != 8 {
		return false
	}

	sum := 0
	for i := 0; i < 7; i++ {
		d := issn[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * (8 - i)
	}

	check := (11 - sum%11) % 11
	last := issn[7]
	if check == 10 {
		return last == 'X'
	}
	return last == byte('0'+check)
}
