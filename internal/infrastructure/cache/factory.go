package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

// Backend names accepted by Open
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeNone     = "none"
)

// Store is an evidence cache that owns resources
type Store interface {
	domain.CacheRepository
	Close() error
}

// Options selects and configures a cache backend
type Options struct {
	Type            string
	SQLitePath      string
	PostgresURL     string
	CleanupInterval time.Duration // expired-entry sweep period; zero means 10 minutes
}

// Open returns the configured backend. TypeNone returns a nil Store,
// which the aggregation service treats as caching disabled.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "", TypeMemory:
		return NewMemoryCache(opts.CleanupInterval), nil
	case TypeSQLite:
		c, err := NewSQLiteCache(opts.SQLitePath, opts.CleanupInterval)
		if err != nil {
			return nil, err
		}
		return c, nil
	case TypePostgres:
		c, err := NewPostgresCache(ctx, opts.PostgresURL, opts.CleanupInterval)
		if err != nil {
			return nil, err
		}
		return c, nil
	case TypeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", opts.Type)
	}
}
