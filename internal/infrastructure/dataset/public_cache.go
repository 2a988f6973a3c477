package dataset

import (
	"context"
	"sync"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

// PublicDataCache memoizes a ReferenceLoader for the life of the process.
// Only credential-free public data passes through it. A failed load is not
// remembered, so the next call tries again.
type PublicDataCache struct {
	loader domain.ReferenceLoader

	mu   sync.Mutex
	data *domain.ReferenceData
}

// NewPublicDataCache wraps loader
func NewPublicDataCache(loader domain.ReferenceLoader) *PublicDataCache {
	return &PublicDataCache{loader: loader}
}

// Load returns the cached reference data, loading it on first use.
// Callers share the result and must treat it as read-only.
func (c *PublicDataCache) Load(ctx context.Context) (*domain.ReferenceData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data != nil {
		return c.data, nil
	}

	data, err := c.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.data = data
	return data, nil
}

// Loaded reports whether the data is already in memory
func (c *PublicDataCache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data != nil
}

var _ domain.ReferenceLoader = (*PublicDataCache)(nil)
var _ domain.ReferenceLoader = (*FileLoader)(nil)
