package scopus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
)

const (
	// SourceName identifies this collaborator in evidence records and cache keys
	SourceName = "scopus"

	serialTitlePath  = "/content/serial/title"
	maxResponseBytes = 1 << 20
	maxErrorBytes    = 512
)

// Config holds the client settings. The API key is not part of it: it is
// supplied on every call by the caller.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	MaxAttempts   int
}

// Client verifies journal indexing against the Elsevier Serial Title API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	maxAttempts int
	backoff     func(attempt int) time.Duration
	debug       bool
}

// NewClient creates a new Scopus API client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elsevier.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	// Elsevier throttles the serial title API at a few requests per second per key
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		maxAttempts: cfg.MaxAttempts,
		backoff:     exponentialBackoff,
	}
}

// Name returns the evidence source name
func (c *Client) Name() string {
	return SourceName
}

// SetDebug enables or disables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Verify reports whether Scopus lists a serial with the given title.
// 5xx and 429 responses are retried with exponential backoff; auth failures are not.
func (c *Client) Verify(ctx context.Context, normalizedName, apiKey string) (*domain.IndexingResult, error) {
	params := url.Values{}
	params.Set("title", normalizedName)
	params.Set("view", "STANDARD")
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, serialTitlePath, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.backoff(attempt-1)); err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrIndexingAPIFailure, err)
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrIndexingAPIFailure, err)
		}

		resp, err := c.doRequest(ctx, reqURL, apiKey)
		if err != nil {
			c.debugLog("request failed", "attempt", attempt, "err", err)
			lastErr = err
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}

		body, readErr := readLimitedBody(resp.Body, maxResponseBytes)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: read body: %w", domain.ErrIndexingAPIFailure, readErr)
			continue
		}

		c.debugLog("response", "attempt", attempt, "status", resp.StatusCode, "title", normalizedName)

		switch {
		case resp.StatusCode == http.StatusOK:
			var parsed serialTitleResponse
			if err := json.Unmarshal(body, &parsed); err != nil {
				return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrMalformedResponse, err)
			}
			return mapToIndexingResult(&parsed), nil

		case resp.StatusCode == http.StatusNotFound:
			// the API answers 404 when no serial matches the title
			return &domain.IndexingResult{Indexed: false}, nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: status %d", domain.ErrAuthRejected, resp.StatusCode)

		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: status %d", domain.ErrRateLimited, resp.StatusCode)

		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: status %d", domain.ErrIndexingAPIFailure, resp.StatusCode)

		default:
			return nil, fmt.Errorf("%w: status %d: %s", domain.ErrIndexingAPIFailure, resp.StatusCode, snippet(body))
		}
	}

	logging.Warn("all attempts failed", "component", SourceName, "title", normalizedName, "attempts", c.maxAttempts)
	return nil, lastErr
}

// doRequest executes an HTTP GET request with the API key header
func (c *Client) doRequest(ctx context.Context, reqURL, apiKey string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrIndexingAPIFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "JournalQualityAnalyzer/1.0")
	req.Header.Set("X-ELS-APIKey", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexingAPIFailure, err)
	}
	return resp, nil
}

func (c *Client) debugLog(msg string, keyvals ...interface{}) {
	if c.debug {
		logging.Debug(msg, append([]interface{}{"component", SourceName}, keyvals...)...)
	}
}

// exponentialBackoff returns the wait before retry number attempt: 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func snippet(body []byte) string {
	if len(body) > maxErrorBytes {
		body = body[:maxErrorBytes]
	}
	return strings.TrimSpace(string(body))
}
