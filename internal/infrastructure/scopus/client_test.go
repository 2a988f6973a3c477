package scopus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

const indexedResponse = `{
	"serial-metadata-response": {
		"link": [],
		"entry": [
			{
				"dc:title": "Nature",
				"dc:publisher": "Nature Publishing Group",
				"prism:issn": "00280836",
				"prism:eIssn": "14764687"
			}
		]
	}
}`

// newTestClient returns a client for server with no retry delay
func newTestClient(server *httptest.Server) *Client {
	c := NewClient(Config{BaseURL: server.URL, RatePerSecond: 1000, Burst: 100})
	c.backoff = func(int) time.Duration { return 0 }
	return c
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.example.com/"})

	assert.NotNil(t, client)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, 3, client.maxAttempts)
	assert.Equal(t, 15*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
	assert.Equal(t, "scopus", client.Name())
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{})
	assert.Equal(t, "https://api.elsevier.com", client.baseURL)
}

func TestSetDebug(t *testing.T) {
	client := NewClient(Config{})

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestVerify_Indexed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content/serial/title", r.URL.Path)
		assert.Equal(t, "nature", r.URL.Query().Get("title"))
		assert.Equal(t, "STANDARD", r.URL.Query().Get("view"))
		assert.Equal(t, "test-api-key", r.Header.Get("X-ELS-APIKey"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotContains(t, r.URL.RawQuery, "test-api-key")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(indexedResponse))
	}))
	defer server.Close()

	result, err := newTestClient(server).Verify(context.Background(), "nature", "test-api-key")

	require.NoError(t, err)
	assert.True(t, result.Indexed)
}

func TestVerify_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"service-error":{"status":{"statusCode":"RESOURCE_NOT_FOUND"}}}`))
	}))
	defer server.Close()

	result, err := newTestClient(server).Verify(context.Background(), "xyzzy", "k")

	require.NoError(t, err)
	assert.False(t, result.Indexed)
}

func TestVerify_ErrorPlaceholderEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"serial-metadata-response":{"entry":[{"error":"Result set was empty"}]}}`))
	}))
	defer server.Close()

	result, err := newTestClient(server).Verify(context.Background(), "xyzzy", "k")

	require.NoError(t, err)
	assert.False(t, result.Indexed)
}

func TestVerify_AuthRejected_NoRetry(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(status)
		}))

		result, err := newTestClient(server).Verify(context.Background(), "nature", "bad-key")
		server.Close()

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrAuthRejected)
		assert.NotContains(t, err.Error(), "bad-key")
		assert.Equal(t, int32(1), attempts.Load())
	}
}

func TestVerify_ServerError_Retries(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(indexedResponse))
	}))
	defer server.Close()

	result, err := newTestClient(server).Verify(context.Background(), "nature", "k")

	require.NoError(t, err)
	assert.True(t, result.Indexed)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestVerify_ClientError_NoRetry(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad title"))
	}))
	defer server.Close()

	result, err := newTestClient(server).Verify(context.Background(), "nature", "k")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrIndexingAPIFailure)
	assert.Contains(t, err.Error(), "bad title")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestVerify_TooManyRequests(t *testing.T) {
	t.Run("retries then succeeds", func(t *testing.T) {
		var attempts atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 2 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(indexedResponse))
		}))
		defer server.Close()

		result, err := newTestClient(server).Verify(context.Background(), "nature", "k")

		require.NoError(t, err)
		assert.True(t, result.Indexed)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("reports rate limiting when retries run out", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newTestClient(server).Verify(context.Background(), "nature", "k")
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})
}

func TestVerify_AllRetriesFail(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	result, err := newTestClient(server).Verify(context.Background(), "nature", "k")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrIndexingAPIFailure)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestVerify_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	result, err := newTestClient(server).Verify(context.Background(), "nature", "k")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestVerify_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := newTestClient(server).Verify(ctx, "nature", "k")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestVerify_RequestCreationError(t *testing.T) {
	client := NewClient(Config{BaseURL: "://invalid-url"})

	result, err := client.Verify(context.Background(), "nature", "k")

	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("short content"))
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("truncates beyond limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for i := 0; i < 100; i++ {
				w.Write([]byte("0123456789"))
			}
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})
}
