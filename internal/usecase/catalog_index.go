package usecase

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

// prefixLength is the rune length of the name prefix used for candidate pruning
const prefixLength = 3

// CatalogIndex is the in-memory reference catalog.
// It is built once and never mutated, so concurrent readers need no locking.
type CatalogIndex struct {
	entries    []domain.CatalogEntry // load order, duplicates removed
	byName     map[string]int        // normalized name -> position in entries
	byISSN     map[string]int        // 8-char ISSN -> position in entries
	byToken    map[string][]int      // content token -> positions, ascending
	byCategory map[string][]int      // normalized category -> positions, ascending
	tokens     [][]string            // content tokens per position
	sorted     []int                 // positions ordered by normalized name
	categories []string              // display names, sorted
	duplicates int
}

// NewCatalogIndex builds the index from loaded entries.
// NormalizedName is (re)computed from Name here so the two can never disagree.
// The first entry wins when two names normalize to the same string.
func NewCatalogIndex(entries []domain.CatalogEntry) (*CatalogIndex, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	idx := &CatalogIndex{
		entries:    make([]domain.CatalogEntry, 0, len(entries)),
		byName:     make(map[string]int, len(entries)),
		byISSN:     make(map[string]int),
		byToken:    make(map[string][]int),
		byCategory: make(map[string][]int),
	}
	categoryNames := make(map[string]string)

	for i, e := range entries {
		normalized := Normalize(e.Name)
		if normalized == "" {
			return nil, fmt.Errorf("%w: entry %d has no usable name (%q)", domain.ErrMalformedDataset, i, e.Name)
		}
		if _, dup := idx.byName[normalized]; dup {
			idx.duplicates++
			continue
		}

		e.NormalizedName = normalized
		pos := len(idx.entries)
		idx.entries = append(idx.entries, e)
		idx.byName[normalized] = pos

		for _, raw := range e.ISSN {
			if issn := normalizeISSN(raw); issn != "" {
				if _, taken := idx.byISSN[issn]; !taken {
					idx.byISSN[issn] = pos
				}
			}
		}

		tokens := contentTokens(normalized)
		idx.tokens = append(idx.tokens, tokens)
		for _, tok := range tokens {
			idx.byToken[tok] = append(idx.byToken[tok], pos)
		}

		for _, c := range e.Categories {
			key := Normalize(c)
			if key == "" {
				continue
			}
			if _, ok := categoryNames[key]; !ok {
				categoryNames[key] = strings.TrimSpace(c)
			}
			list := idx.byCategory[key]
			if len(list) == 0 || list[len(list)-1] != pos {
				idx.byCategory[key] = append(list, pos)
			}
		}
	}

	idx.sorted = make([]int, len(idx.entries))
	for i := range idx.sorted {
		idx.sorted[i] = i
	}
	sort.Slice(idx.sorted, func(a, b int) bool {
		return idx.entries[idx.sorted[a]].NormalizedName < idx.entries[idx.sorted[b]].NormalizedName
	})

	idx.categories = make([]string, 0, len(categoryNames))
	for _, display := range categoryNames {
		idx.categories = append(idx.categories, display)
	}
	sort.Strings(idx.categories)

	return idx, nil
}

// Len returns the number of distinct journals in the catalog
func (idx *CatalogIndex) Len() int {
	return len(idx.entries)
}

// Duplicates returns how many entries were dropped as duplicate names
func (idx *CatalogIndex) Duplicates() int {
	return idx.duplicates
}

// LookupExact returns the entry whose normalized name equals normalizedName
func (idx *CatalogIndex) LookupExact(normalizedName string) (domain.CatalogEntry, bool) {
	pos, ok := idx.byName[normalizedName]
	if !ok {
		return domain.CatalogEntry{}, false
	}
	return idx.entries[pos], true
}

// LookupISSN returns the entry carrying the given ISSN (any common spelling)
func (idx *CatalogIndex) LookupISSN(issn string) (domain.CatalogEntry, bool) {
	key := normalizeISSN(issn)
	if key == "" {
		return domain.CatalogEntry{}, false
	}
	pos, ok := idx.byISSN[key]
	if !ok {
		return domain.CatalogEntry{}, false
	}
	return idx.entries[pos], true
}

// AllEntries yields every entry in load order. The sequence can be ranged over
// any number of times; each range starts from the beginning.
func (idx *CatalogIndex) AllEntries() iter.Seq[domain.CatalogEntry] {
	return func(yield func(domain.CatalogEntry) bool) {
		for pos := range idx.allPositions() {
			if !yield(idx.entries[pos]) {
				return
			}
		}
	}
}

// EntriesByPrefix returns the entries whose normalized name starts with
// normalizedPrefix, ordered by normalized name. An empty prefix returns nothing.
func (idx *CatalogIndex) EntriesByPrefix(normalizedPrefix string) []domain.CatalogEntry {
	return idx.collect(idx.prefixPositions(normalizedPrefix))
}

// EntriesByToken returns the entries whose name contains the content token, in load order
func (idx *CatalogIndex) EntriesByToken(token string) []domain.CatalogEntry {
	return idx.collect(idx.tokenPositions(token))
}

// Categories returns every category name in the catalog, sorted
func (idx *CatalogIndex) Categories() []string {
	return append([]string(nil), idx.categories...)
}

// EntriesInCategory returns the entries listed under a category, in load order.
// The category is compared in normalized form.
func (idx *CatalogIndex) EntriesInCategory(category string) []domain.CatalogEntry {
	return idx.collect(idx.byCategory[Normalize(category)])
}

// candidatePositions returns the positions worth scoring for a query: entries sharing
// a content token plus entries sharing the name prefix. Ascending, no duplicates.
func (idx *CatalogIndex) candidatePositions(normalizedQuery string, tokens []string) []int {
	seen := make(map[int]bool)
	for _, tok := range tokens {
		for _, pos := range idx.tokenPositions(tok) {
			seen[pos] = true
		}
	}
	for _, pos := range idx.prefixPositions(runePrefix(normalizedQuery, prefixLength)) {
		seen[pos] = true
	}

	out := make([]int, 0, len(seen))
	for pos := range seen {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

// allPositions yields every position in load order
func (idx *CatalogIndex) allPositions() iter.Seq[int] {
	return func(yield func(int) bool) {
		for pos := range idx.entries {
			if !yield(pos) {
				return
			}
		}
	}
}

// prefixPositions returns the positions whose normalized name starts with prefix,
// ordered by normalized name. An empty prefix matches nothing.
func (idx *CatalogIndex) prefixPositions(prefix string) []int {
	if prefix == "" {
		return nil
	}

	start := sort.Search(len(idx.sorted), func(i int) bool {
		return idx.entries[idx.sorted[i]].NormalizedName >= prefix
	})

	var out []int
	for i := start; i < len(idx.sorted); i++ {
		pos := idx.sorted[i]
		if !strings.HasPrefix(idx.entries[pos].NormalizedName, prefix) {
			break
		}
		out = append(out, pos)
	}
	return out
}

func (idx *CatalogIndex) tokenPositions(token string) []int {
	return idx.byToken[token]
}

func (idx *CatalogIndex) entryAt(pos int) domain.CatalogEntry {
	return idx.entries[pos]
}

func (idx *CatalogIndex) tokensAt(pos int) []string {
	return idx.tokens[pos]
}

func (idx *CatalogIndex) collect(positions []int) []domain.CatalogEntry {
	if len(positions) == 0 {
		return nil
	}
	out := make([]domain.CatalogEntry, len(positions))
	for i, pos := range positions {
		out[i] = idx.entries[pos]
	}
	return out
}

func runePrefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	if count < n {
		return ""
	}
	return s
}
