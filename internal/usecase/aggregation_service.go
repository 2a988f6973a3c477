package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
)

// Source names used when a collaborator is not configured
const (
	defaultIndexingSource   = "scopus"
	defaultExtractionSource = "gemini"
)

const maxCredentialLength = 256

// AggregationConfig holds configuration for the aggregation service
type AggregationConfig struct {
	TopK                  int           // candidates requested from the matcher; rank 1 is resolved
	IndexingTimeout       time.Duration // per-call limit for the indexing-verification source
	ExtractionTimeout     time.Duration // per-call limit for the AI-extraction source
	CacheTTL              time.Duration // lifetime of cached evidence
	MaxConcurrentJournals int           // parallel journals for batch and category resolution
}

// AggregationService resolves a query into a Verdict: catalog match, blocklist
// classification and advisory evidence from the two external sources.
//
// Credentials are taken per call and only ever handed to the collaborators.
// The optional evidence cache is keyed by source and normalized journal name.
type AggregationService struct {
	matcher    *MatchingService
	classifier *PredatoryClassifier
	verifier   domain.IndexingVerifier
	extractor  domain.MetadataExtractor
	cache      domain.CacheRepository

	indexingSource    string
	extractionSource  string
	topK              int
	indexingTimeout   time.Duration
	extractionTimeout time.Duration
	cacheTTL          time.Duration
	maxConcurrent     int
}

// NewAggregationService creates a new aggregation service with dependencies.
// verifier, extractor and cache may be nil; a nil source is reported as skipped.
func NewAggregationService(
	matcher *MatchingService,
	classifier *PredatoryClassifier,
	verifier domain.IndexingVerifier,
	extractor domain.MetadataExtractor,
	cache domain.CacheRepository,
	config AggregationConfig,
) *AggregationService {
	s := &AggregationService{
		matcher:           matcher,
		classifier:        classifier,
		verifier:          verifier,
		extractor:         extractor,
		cache:             cache,
		indexingSource:    defaultIndexingSource,
		extractionSource:  defaultExtractionSource,
		topK:              config.TopK,
		indexingTimeout:   config.IndexingTimeout,
		extractionTimeout: config.ExtractionTimeout,
		cacheTTL:          config.CacheTTL,
		maxConcurrent:     config.MaxConcurrentJournals,
	}

	if verifier != nil {
		s.indexingSource = verifier.Name()
	}
	if extractor != nil {
		s.extractionSource = extractor.Name()
	}
	if s.topK <= 0 {
		s.topK = 5
	}
	if s.indexingTimeout <= 0 {
		s.indexingTimeout = 10 * time.Second
	}
	if s.extractionTimeout <= 0 {
		s.extractionTimeout = 30 * time.Second
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = 168 * time.Hour // Default 7 days
	}
	if s.maxConcurrent <= 0 {
		s.maxConcurrent = 4
	}

	return s
}

// Resolve matches query against the catalog, classifies the best candidate and
// merges external evidence into a Verdict.
//
// External-source failures never surface as errors; they are recorded in
// EvidenceSources and leave the corresponding fields unknown. Errors are
// returned only for invalid input or when ctx ends before matching completes.
func (s *AggregationService) Resolve(ctx context.Context, query string, creds domain.Credentials) (*domain.Verdict, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	return s.resolve(ctx, query, creds)
}

// ResolveBatch resolves every query, preserving input order.
// All queries are validated before any of them is resolved.
func (s *AggregationService) ResolveBatch(ctx context.Context, queries []string, creds domain.Credentials) ([]domain.Verdict, error) {
	for i, q := range queries {
		if err := validateQuery(q); err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
	}
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	return s.fanOut(ctx, len(queries), func(ctx context.Context, i int) (*domain.Verdict, error) {
		return s.resolve(ctx, queries[i], creds)
	})
}

// ResolveCategory resolves every catalog journal listed under category, in
// catalog order. Each journal is its own exact match.
func (s *AggregationService) ResolveCategory(ctx context.Context, category string, creds domain.Credentials) ([]domain.Verdict, error) {
	if Normalize(category) == "" {
		return nil, domain.ErrInvalidQuery
	}
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	entries := s.matcher.Index().EntriesInCategory(category)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	logging.Info("resolving category", "component", "aggregator", "category", category, "journals", len(entries))

	return s.fanOut(ctx, len(entries), func(ctx context.Context, i int) (*domain.Verdict, error) {
		return s.resolveEntry(ctx, entries[i].Name, &entries[i], exactMatchScore, creds), nil
	})
}

func (s *AggregationService) resolve(ctx context.Context, query string, creds domain.Credentials) (*domain.Verdict, error) {
	candidates, err := s.matcher.Match(ctx, query, s.topK)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		return s.resolveEntry(ctx, query, nil, 0, creds), nil
	}
	best := candidates[0]
	return s.resolveEntry(ctx, query, &best.Entry, best.Score, creds), nil
}

// resolveEntry builds the Verdict for a matched entry, or for the raw query when entry is nil
func (s *AggregationService) resolveEntry(
	ctx context.Context,
	query string,
	entry *domain.CatalogEntry,
	score float64,
	creds domain.Credentials,
) *domain.Verdict {
	verdict := &domain.Verdict{
		Query:      query,
		Categories: []string{},
	}

	lookupName := Normalize(query)
	var status domain.PredatoryStatus

	if entry != nil {
		lookupName = entry.NormalizedName
		verdict.MatchedName = entry.Name
		verdict.MatchScore = score
		verdict.Categories = append(verdict.Categories, entry.Categories...)
		verdict.Publisher = entry.Publisher
		verdict.ISSN = append([]string(nil), entry.ISSN...)
		verdict.Country = entry.Country
		if entry.SJR != nil {
			sjr := *entry.SJR
			verdict.SJR = &sjr
		}
		verdict.Quartile = entry.Quartile
		status = s.classifier.Classify(entry.Name, entry.Publisher)
	} else {
		status = s.classifier.Classify(query, "")
	}

	verdict.IsPredatoryJournal = status.Journal
	verdict.IsPredatoryPublisher = status.Publisher

	indexing, extraction, records := s.gatherEvidence(ctx, lookupName, creds)
	verdict.EvidenceSources = records

	if indexing != nil {
		indexed := indexing.Indexed
		verdict.ScopusIndexed = &indexed
	}
	if extraction != nil {
		verdict.APC = extraction.APC
		verdict.PublicationFrequency = extraction.Frequency
		verdict.OpenAccess = extraction.OpenAccess
		verdict.Hybrid = extraction.Hybrid
	}

	return verdict
}

// gatherEvidence consults both sources concurrently and waits for both.
// records always holds one entry per source: indexing first, extraction second.
func (s *AggregationService) gatherEvidence(
	ctx context.Context,
	name string,
	creds domain.Credentials,
) (indexing *domain.IndexingResult, extraction *domain.ExtractionResult, records []domain.EvidenceRecord) {
	records = make([]domain.EvidenceRecord, 2)

	var g errgroup.Group
	g.Go(func() error {
		var verify func(context.Context) (*domain.IndexingResult, error)
		if s.verifier != nil {
			verify = func(ctx context.Context) (*domain.IndexingResult, error) {
				return s.verifier.Verify(ctx, name, creds.IndexingKey)
			}
		}
		indexing, records[0] = fetchEvidence(ctx, s, s.indexingSource, name, creds.IndexingKey, s.indexingTimeout, verify)
		return nil
	})
	g.Go(func() error {
		var extract func(context.Context) (*domain.ExtractionResult, error)
		if s.extractor != nil {
			extract = func(ctx context.Context) (*domain.ExtractionResult, error) {
				return s.extractor.Extract(ctx, name, creds.ExtractionKey)
			}
		}
		extraction, records[1] = fetchEvidence(ctx, s, s.extractionSource, name, creds.ExtractionKey, s.extractionTimeout, extract)
		return nil
	})
	_ = g.Wait()

	return indexing, extraction, records
}

// fetchEvidence runs one source call under its own timeout and turns the outcome
// into an evidence record. A nil call means the source is not configured.
func fetchEvidence[T any](
	ctx context.Context,
	s *AggregationService,
	source, name, apiKey string,
	timeout time.Duration,
	call func(context.Context) (*T, error),
) (*T, domain.EvidenceRecord) {
	record := domain.EvidenceRecord{Source: source}

	if apiKey == "" {
		record.Status = domain.EvidenceSkipped
		record.Detail = "no API key supplied"
		return nil, record
	}
	if call == nil {
		record.Status = domain.EvidenceSkipped
		record.Detail = "source not configured"
		return nil, record
	}

	cacheKey := evidenceCacheKey(source, name)
	if cached, ok := loadEvidence[T](ctx, s.cache, cacheKey); ok {
		record.Status = domain.EvidenceOK
		record.Detail = "cached"
		return cached, record
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := call(callCtx)
	if err == nil && result == nil {
		err = fmt.Errorf("%w: empty result", domain.ErrMalformedResponse)
	}
	if err != nil {
		record.Status = domain.EvidenceFailed
		record.Detail = redact(failureDetail(ctx, callCtx, err, timeout), apiKey)
		logging.Warn("evidence source failed",
			"component", "aggregator", "source", source, "journal", name, "detail", record.Detail)
		return nil, record
	}

	logging.Debug("evidence source ok",
		"component", "aggregator", "source", source, "journal", name, "elapsed", time.Since(start))

	storeEvidence(ctx, s.cache, cacheKey, result, s.cacheTTL)
	record.Status = domain.EvidenceOK
	return result, record
}

// evidenceCacheKey creates the cache key for one source's evidence about a journal.
// Format: "evidence:{source}:{normalized_name}". Credentials never take part.
func evidenceCacheKey(source, normalizedName string) string {
	return fmt.Sprintf("evidence:%s:%s", source, normalizedName)
}

func loadEvidence[T any](ctx context.Context, cache domain.CacheRepository, key string) (*T, bool) {
	if cache == nil {
		return nil, false
	}

	data, err := cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logging.Debug("evidence cache read failed", "component", "aggregator", "key", key, "err", err)
		}
		return nil, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		logging.Debug("discarding unreadable cached evidence", "component", "aggregator", "key", key, "err", err)
		return nil, false
	}
	return &value, true
}

func storeEvidence[T any](ctx context.Context, cache domain.CacheRepository, key string, value *T, ttl time.Duration) {
	if cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	// write failures are ignored
	if err := cache.Set(ctx, key, data, ttl); err != nil {
		logging.Debug("evidence cache write failed", "component", "aggregator", "key", key, "err", err)
	}
}

// failureDetail turns a source error into a short human-readable reason
func failureDetail(parent, callCtx context.Context, err error, timeout time.Duration) string {
	switch {
	case parent.Err() != nil:
		return "cancelled: " + parent.Err().Error()
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return fmt.Sprintf("timed out after %s", timeout)
	case errors.Is(err, domain.ErrAuthRejected):
		return "authentication rejected: " + err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		return "rate limited: " + err.Error()
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed response: " + err.Error()
	default:
		return err.Error()
	}
}

// redact removes every occurrence of key from s
func redact(s, key string) string {
	if key == "" {
		return s
	}
	return strings.ReplaceAll(s, key, "[REDACTED]")
}

func validateQuery(query string) error {
	if Normalize(query) == "" {
		return domain.ErrInvalidQuery
	}
	return nil
}

func validateCredentials(creds domain.Credentials) error {
	if err := validateCredential(creds.IndexingKey); err != nil {
		return fmt.Errorf("indexing key: %w", err)
	}
	if err := validateCredential(creds.ExtractionKey); err != nil {
		return fmt.Errorf("extraction key: %w", err)
	}
	return nil
}

// validateCredential accepts an absent key or a single printable token.
// The key itself never appears in the returned error.
func validateCredential(key string) error {
	if key == "" {
		return nil
	}
	if len(key) > maxCredentialLength {
		return fmt.Errorf("%w: longer than %d bytes", domain.ErrInvalidCredential, maxCredentialLength)
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: not valid UTF-8", domain.ErrInvalidCredential)
	}
	for _, r := range key {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: contains whitespace or control characters", domain.ErrInvalidCredential)
		}
	}
	return nil
}

// fanOut runs resolve for indexes 0..n-1 with bounded concurrency and returns
// the verdicts in index order. The first error cancels the remaining work.
func (s *AggregationService) fanOut(
	ctx context.Context,
	n int,
	resolve func(ctx context.Context, i int) (*domain.Verdict, error),
) ([]domain.Verdict, error) {
	verdicts := make([]domain.Verdict, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := resolve(gctx, i)
			if err != nil {
				return err
			}
			verdicts[i] = *v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return verdicts, nil
}
