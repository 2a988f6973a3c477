package domain

import (
	"errors"
	"fmt"
)

// Startup errors: the reference data could not be built. Fatal to process start.
var (
	// ErrEmptyCatalog is returned when the catalog dataset has no entries
	ErrEmptyCatalog = errors.New("catalog dataset is empty")

	// ErrMalformedDataset is returned when a dataset is missing required columns or names
	ErrMalformedDataset = errors.New("malformed reference dataset")

	// ErrDatasetUnavailable is returned when a dataset file cannot be read
	ErrDatasetUnavailable = errors.New("reference dataset unavailable")
)

// Input-validation errors. Rejected before any matching or aggregation work.
var (
	// ErrInvalidInput is the parent of every input-validation error
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidQuery is returned for an empty or whitespace-only query
	ErrInvalidQuery = fmt.Errorf("%w: empty query", ErrInvalidInput)

	// ErrInvalidCredential is returned for a malformed API key string
	ErrInvalidCredential = fmt.Errorf("%w: malformed credential", ErrInvalidInput)

	// ErrInvalidTopK is returned when top_k is not positive
	ErrInvalidTopK = fmt.Errorf("%w: top_k must be positive", ErrInvalidInput)

	// ErrUnknownCategory is returned when a category is not in the catalog
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrInvalidInput)
)

// External-source errors. Always recovered inside the aggregator.
var (
	// ErrAuthRejected is returned when an external API rejects the supplied key
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrRateLimited is returned when an external API rejects a call for rate limiting
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrMalformedResponse is returned when an external API response cannot be decoded
	ErrMalformedResponse = errors.New("malformed response")

	// ErrIndexingAPIFailure is returned when the indexing-verification API request fails
	ErrIndexingAPIFailure = errors.New("indexing API request failed")

	// ErrExtractionAPIFailure is returned when the AI-extraction API request fails
	ErrExtractionAPIFailure = errors.New("extraction API request failed")
)

// ErrCacheMiss is returned when data is not found in cache
var ErrCacheMiss = errors.New("cache miss")
