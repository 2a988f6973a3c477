package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for the evidence cache.
// Values are opaque serialized bytes so every backend stores the same thing.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// IndexingVerifier checks whether a journal is indexed by an external authority.
// apiKey is a call parameter only; implementations must not store or log it.
type IndexingVerifier interface {
	Name() string
	Verify(ctx context.Context, normalizedName, apiKey string) (*IndexingResult, error)
}

// MetadataExtractor asks an AI service for advisory journal metadata.
// apiKey is a call parameter only; implementations must not store or log it.
type MetadataExtractor interface {
	Name() string
	Extract(ctx context.Context, normalizedName, apiKey string) (*ExtractionResult, error)
}

// ReferenceLoader supplies the catalog and blocklists at startup.
// It takes no credentials, which is what allows its output to be cached.
type ReferenceLoader interface {
	Load(ctx context.Context) (*ReferenceData, error)
}
