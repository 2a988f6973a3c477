package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

// PostgresCache shares evidence between several server instances
type PostgresCache struct {
	db      *sql.DB
	sweeper *sweeper
}

// NewPostgresCache connects to databaseURL, creates the cache table if needed
// and deletes expired rows every cleanupInterval (10 minutes when zero).
func NewPostgresCache(ctx context.Context, databaseURL string, cleanupInterval time.Duration) (*PostgresCache, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS evidence_cache (
		cache_key  TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL
	)
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	c := &PostgresCache{db: db}
	c.sweeper = startSweeper(TypePostgres, cleanupInterval, c.CleanExpired)
	return c, nil
}

// Get retrieves a value from the cache
func (c *PostgresCache) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
	SELECT value
	FROM evidence_cache
	WHERE cache_key = $1 AND expires_at > NOW()
	`

	var value []byte
	err := c.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a value in the cache with TTL
func (c *PostgresCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `
	INSERT INTO evidence_cache (cache_key, value, created_at, expires_at)
	VALUES ($1, $2, NOW(), $3)
	ON CONFLICT (cache_key)
	DO UPDATE SET value = $2, created_at = NOW(), expires_at = $3
	`

	_, err := c.db.ExecContext(ctx, query, key, value, time.Now().Add(ttl))
	return err
}

// Delete removes a value from the cache
func (c *PostgresCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM evidence_cache WHERE cache_key = $1`, key)
	return err
}

// Exists checks if a key exists in the cache and is not expired
func (c *PostgresCache) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM evidence_cache WHERE cache_key = $1 AND expires_at > NOW())`,
		key,
	).Scan(&exists)
	return exists, err
}

// CleanExpired deletes expired rows and reports how many were removed
func (c *PostgresCache) CleanExpired(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM evidence_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Close stops the expiry sweep and closes the database connection
func (c *PostgresCache) Close() error {
	c.sweeper.stop()
	return c.db.Close()
}
