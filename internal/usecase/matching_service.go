package usecase

import (
	"context"
	"iter"
	"slices"
	"sort"
	"unicode/utf8"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
)

// Scoring defaults
const (
	defaultMatchFloor  = 0.55
	defaultEditWeight  = 0.6
	defaultTokenWeight = 0.4
	exactMatchScore    = 1.0
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Floor              float64 // minimum score a candidate needs to be returned
	EditWeight         float64 // weight of the normalized edit-distance ratio
	TokenWeight        float64 // weight of the content-token Jaccard overlap
	EnablePruning      bool    // score only token/prefix neighbours instead of the whole catalog
	EnableDebugLogging bool
}

// DefaultMatchConfig returns the tuned defaults with pruning on
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Floor:         defaultMatchFloor,
		EditWeight:    defaultEditWeight,
		TokenWeight:   defaultTokenWeight,
		EnablePruning: true,
	}
}

// MatchingService ranks catalog entries against a free-text journal name
type MatchingService struct {
	index              *CatalogIndex
	floor              float64
	editWeight         float64
	tokenWeight        float64
	enablePruning      bool
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration.
// A non-positive floor or weight pair falls back to the defaults.
func NewMatchingService(index *CatalogIndex, config MatchConfig) *MatchingService {
	floor := config.Floor
	if floor <= 0 || floor > 1 {
		floor = defaultMatchFloor
	}

	editWeight, tokenWeight := config.EditWeight, config.TokenWeight
	if editWeight < 0 || tokenWeight < 0 || editWeight+tokenWeight <= 0 {
		editWeight, tokenWeight = defaultEditWeight, defaultTokenWeight
	}

	return &MatchingService{
		index:              index,
		floor:              floor,
		editWeight:         editWeight,
		tokenWeight:        tokenWeight,
		enablePruning:      config.EnablePruning,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Floor returns the effective minimum score
func (s *MatchingService) Floor() float64 {
	return s.floor
}

// Index returns the catalog the service matches against
func (s *MatchingService) Index() *CatalogIndex {
	return s.index
}

// Match returns at most topK catalog entries for query, best first.
// An exact normalized name (or a catalog ISSN) short-circuits to a single candidate
// scored 1.0. No candidate above the floor is a valid empty result, not an error.
func (s *MatchingService) Match(ctx context.Context, query string, topK int) ([]domain.MatchCandidate, error) {
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}

	normalized := Normalize(query)
	if normalized == "" {
		return []domain.MatchCandidate{}, nil
	}

	if entry, ok := s.index.LookupExact(normalized); ok {
		s.debug("exact name match", "query", query, "matched", entry.Name)
		return []domain.MatchCandidate{{Entry: entry, Score: exactMatchScore, Rank: 1}}, nil
	}
	if issn, ok := queryISSN(query); ok {
		if entry, ok := s.index.LookupISSN(issn); ok {
			s.debug("exact ISSN match", "query", query, "matched", entry.Name)
			return []domain.MatchCandidate{{Entry: entry, Score: exactMatchScore, Rank: 1}}, nil
		}
	}

	queryTokens := contentTokens(normalized)

	var candidates []domain.MatchCandidate
	if s.enablePruning {
		pool := s.index.candidatePositions(normalized, queryTokens)
		s.debug("scoring pruned pool", "query", query, "normalized", normalized, "pool", len(pool))

		var err error
		candidates, err = s.scorePositions(ctx, slices.Values(pool), normalized, queryTokens)
		if err != nil {
			return nil, err
		}
	}
	// an empty pruned result falls back to the whole catalog
	if len(candidates) == 0 {
		s.debug("scoring full catalog", "query", query, "normalized", normalized, "pool", s.index.Len())

		var err error
		candidates, err = s.scorePositions(ctx, s.index.allPositions(), normalized, queryTokens)
		if err != nil {
			return nil, err
		}
	}

	rankCandidates(candidates)
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	if s.enableDebugLogging && len(candidates) > 0 {
		s.debug("best match", "query", query, "matched", candidates[0].Entry.Name, "score", candidates[0].Score)
	}

	if candidates == nil {
		candidates = []domain.MatchCandidate{}
	}
	return candidates, nil
}

// scorePositions scores the entries at positions and keeps those at or above the floor
func (s *MatchingService) scorePositions(
	ctx context.Context,
	positions iter.Seq[int],
	normalized string,
	queryTokens []string,
) ([]domain.MatchCandidate, error) {
	queryLen := utf8.RuneCountInString(normalized)
	var candidates []domain.MatchCandidate

	for pos := range positions {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		entry := s.index.entryAt(pos)
		entryLen := utf8.RuneCountInString(entry.NormalizedName)
		if s.upperBound(queryLen, entryLen) < s.floor {
			continue
		}

		score := s.calculateMatchScore(normalized, queryTokens, entry.NormalizedName, s.index.tokensAt(pos))
		if score < s.floor {
			continue
		}
		candidates = append(candidates, domain.MatchCandidate{Entry: entry, Score: score})
	}
	return candidates, nil
}

// calculateMatchScore combines the edit-distance ratio of the full normalized
// names with the Jaccard overlap of their content tokens. Result is in [0,1].
func (s *MatchingService) calculateMatchScore(query string, queryTokens []string, name string, nameTokens []string) float64 {
	edit := editRatio(query, name)

	jaccard := 0.0
	if union := findUnion(queryTokens, nameTokens); union > 0 {
		common := findIntersection(queryTokens, nameTokens)
		jaccard = float64(common) / float64(union)
	}

	return (s.editWeight*edit + s.tokenWeight*jaccard) / (s.editWeight + s.tokenWeight)
}

// upperBound is the best score two names of these rune lengths could reach.
// The edit ratio can never beat 1 - |la-lb|/max(la,lb).
func (s *MatchingService) upperBound(la, lb int) float64 {
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	bestEdit := 1 - float64(diff)/float64(longest)
	return (s.editWeight*bestEdit + s.tokenWeight) / (s.editWeight + s.tokenWeight)
}

func (s *MatchingService) debug(msg string, keyvals ...interface{}) {
	if s.enableDebugLogging {
		logging.Debug(msg, append([]interface{}{"component", "matcher"}, keyvals...)...)
	}
}

// rankCandidates orders by score descending, then shorter catalog name, then name.
// The order is total, so equal inputs always rank identically.
func rankCandidates(candidates []domain.MatchCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		la, lb := utf8.RuneCountInString(a.Entry.Name), utf8.RuneCountInString(b.Entry.Name)
		if la != lb {
			return la < lb
		}
		return a.Entry.Name < b.Entry.Name
	})
}

// editRatio is 1 - levenshtein/longest, over runes
func editRatio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshteinDistance(a, b))/float64(longest)
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rows instead of the full matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// findIntersection returns the count of distinct tokens present in both sets
func findIntersection(tokens1, tokens2 []string) int {
	set := make(map[string]bool, len(tokens1))
	for _, t := range tokens1 {
		set[t] = true
	}

	common := 0
	for _, t := range tokens2 {
		if set[t] {
			common++
			delete(set, t)
		}
	}

	return common
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool, len(tokens1)+len(tokens2))
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
