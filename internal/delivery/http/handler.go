package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/infrastructure/export"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
)

// Credential headers. Their values are forwarded to the aggregator and never logged.
const (
	HeaderScopusKey = "X-Scopus-API-Key"
	HeaderGeminiKey = "X-Gemini-API-Key"

	maxBatchQueries = 100
	maxTopK         = 50
)

// Resolver produces verdicts for queries and categories
type Resolver interface {
	Resolve(ctx context.Context, query string, creds domain.Credentials) (*domain.Verdict, error)
	ResolveBatch(ctx context.Context, queries []string, creds domain.Credentials) ([]domain.Verdict, error)
	ResolveCategory(ctx context.Context, category string, creds domain.Credentials) ([]domain.Verdict, error)
}

// Matcher ranks catalog candidates for a query
type Matcher interface {
	Match(ctx context.Context, query string, topK int) ([]domain.MatchCandidate, error)
}

// CategoryLister lists catalog categories
type CategoryLister interface {
	Categories() []string
}

// ResultSetBuilder turns verdicts into an exportable ResultSet
type ResultSetBuilder interface {
	Build(verdicts []domain.Verdict) domain.ResultSet
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver   Resolver
	matcher    Matcher
	categories CategoryLister
	builder    ResultSetBuilder
	topK       int
}

// NewHandler creates a new HTTP handler. Any dependency may be nil; the
// endpoints that need it then answer 503.
func NewHandler(resolver Resolver, matcher Matcher, categories CategoryLister, builder ResultSetBuilder, topK int) *Handler {
	if topK <= 0 {
		topK = 5
	}
	return &Handler{
		resolver:   resolver,
		matcher:    matcher,
		categories: categories,
		builder:    builder,
		topK:       topK,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "journal-quality-analyzer",
		"version": "1.0.0",
	})
}

// MatchJournals ranks catalog candidates for ?q=, at most ?k= of them
func (h *Handler) MatchJournals(c *gin.Context) {
	if h.matcher == nil {
		notConfigured(c, "matching")
		return
	}

	k := h.topK
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxTopK {
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must be an integer between 1 and 50"})
			return
		}
		k = n
	}

	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidQuery.Error()})
		return
	}

	candidates, err := h.matcher.Match(c.Request.Context(), query, k)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      query,
		"candidates": candidates,
	})
}

type resolveRequest struct {
	Query   string   `json:"query"`
	Queries []string `json:"queries"`
}

// ResolveJournals resolves one query or a batch. A single query answers with
// a Verdict; a batch answers with a ResultSet (CSV with ?format=csv).
func (h *Handler) ResolveJournals(c *gin.Context) {
	if h.resolver == nil || h.builder == nil {
		notConfigured(c, "journal resolution")
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	hasSingle := strings.TrimSpace(req.Query) != ""
	switch {
	case hasSingle && len(req.Queries) > 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "set either query or queries, not both"})
		return
	case !hasSingle && len(req.Queries) == 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "query or queries is required"})
		return
	case len(req.Queries) > maxBatchQueries:
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many queries (max 100)"})
		return
	}

	creds := credentialsFrom(c)

	if hasSingle && !wantsCSV(c) {
		verdict, err := h.resolver.Resolve(c.Request.Context(), req.Query, creds)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, verdict)
		return
	}

	queries := req.Queries
	if hasSingle {
		queries = []string{req.Query}
	}
	verdicts, err := h.resolver.ResolveBatch(c.Request.Context(), queries, creds)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeResultSet(c, "specific", h.builder.Build(verdicts))
}

// ListCategories returns the sorted catalog category names
func (h *Handler) ListCategories(c *gin.Context) {
	if h.categories == nil {
		notConfigured(c, "catalog")
		return
	}

	categories := h.categories.Categories()
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

type analyzeCategoryRequest struct {
	Category string `json:"category"`
}

// AnalyzeCategory resolves every journal of a category into a ResultSet
func (h *Handler) AnalyzeCategory(c *gin.Context) {
	if h.resolver == nil || h.builder == nil {
		notConfigured(c, "category analysis")
		return
	}

	var req analyzeCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	verdicts, err := h.resolver.ResolveCategory(c.Request.Context(), req.Category, credentialsFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeResultSet(c, "category", h.builder.Build(verdicts))
}

func (h *Handler) writeResultSet(c *gin.Context, kind string, rs domain.ResultSet) {
	if !wantsCSV(c) {
		c.JSON(http.StatusOK, rs)
		return
	}

	name := export.FileName(kind, time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, rs); err != nil {
		logging.Error("csv export failed", "component", "http", "err", err)
	}
}

// writeError maps domain errors to HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownCategory):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		logging.Error("request failed", "component", "http", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func notConfigured(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": what + " is not configured",
	})
}

func credentialsFrom(c *gin.Context) domain.Credentials {
	return domain.Credentials{
		IndexingKey:   strings.TrimSpace(c.GetHeader(HeaderScopusKey)),
		ExtractionKey: strings.TrimSpace(c.GetHeader(HeaderGeminiKey)),
	}
}

func wantsCSV(c *gin.Context) bool {
	return strings.EqualFold(c.Query("format"), "csv")
}
