package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
)

const (
	// SourceName identifies this collaborator in evidence records and cache keys
	SourceName = "gemini"

	maxResponseBytes = 1 << 20
	maxErrorBytes    = 512
)

// Config holds the client settings. The API key is supplied per call.
type Config struct {
	BaseURL       string
	Model         string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// Client extracts advisory journal metadata with the Gemini generateContent API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Gemini API client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}
}

// Name returns the evidence source name
func (c *Client) Name() string {
	return SourceName
}

// SetDebug enables or disables response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Extract asks the model for APC, frequency, open access and hybrid status.
// Generation is not idempotent, so failures are returned without retry.
func (c *Client) Extract(ctx context.Context, normalizedName, apiKey string) (*domain.ExtractionResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrExtractionAPIFailure, err)
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(normalizedName)}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", domain.ErrExtractionAPIFailure, err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrExtractionAPIFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrExtractionAPIFailure, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", domain.ErrAuthRejected, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrExtractionAPIFailure, resp.StatusCode, snippet(body))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrMalformedResponse, err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", domain.ErrMalformedResponse)
	}

	var text strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	result := ParseExtraction(text.String())
	if c.debug {
		logging.Debug("extraction parsed",
			"component", SourceName,
			"journal", normalizedName,
			"apc", result.APC != nil,
			"frequency", result.Frequency != nil,
			"open_access", result.OpenAccess,
			"hybrid", result.Hybrid,
		)
	}
	return result, nil
}

func buildPrompt(journalName string) string {
	return fmt.Sprintf(`For the academic journal '%s', provide:
1. The article processing charge (APC) in USD, EUR, or GBP if available, or 'None' if not found.
2. The publication frequency (e.g., monthly, quarterly, annual, or number of issues per year), or 'None' if not found.
3. Whether the journal is open access (answer 'Yes', 'No', or 'Unknown').
4. Whether the journal is hybrid (answer 'Yes', 'No', or 'Unknown').
Respond in the format:
APC: <value>
Frequency: <value>
Open Access: <Yes/No/Unknown>
Hybrid: <Yes/No/Unknown>`, journalName)
}

func snippet(body []byte) string {
	if len(body) > maxErrorBytes {
		body = body[:maxErrorBytes]
	}
	return strings.TrimSpace(string(body))
}
