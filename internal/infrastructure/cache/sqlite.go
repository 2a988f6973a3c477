package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

// SQLiteCache persists evidence in a local SQLite file so it survives restarts
type SQLiteCache struct {
	db      *sql.DB
	sweeper *sweeper
}

// NewSQLiteCache opens (or creates) the cache database at path and deletes
// expired rows every cleanupInterval (10 minutes when zero).
// ":memory:" gives a shared in-memory database, used by tests.
func NewSQLiteCache(path string, cleanupInterval time.Duration) (*SQLiteCache, error) {
	// writers wait on the lock instead of failing while a sweep runs
	connStr := path + "?_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		// shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite cache: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS evidence_cache (
		cache_key  TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_evidence_cache_expires ON evidence_cache(expires_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite cache schema: %w", err)
	}

	c := &SQLiteCache{db: db}
	c.sweeper = startSweeper(TypeSQLite, cleanupInterval, c.CleanExpired)
	return c, nil
}

// Get retrieves a value from the cache
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM evidence_cache WHERE cache_key = ? AND expires_at > ?`,
		key, time.Now().UnixNano(),
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite cache get: %w", err)
	}
	return value, nil
}

// Set stores a value in the cache with TTL, replacing any previous value
func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO evidence_cache (cache_key, value, expires_at)
	VALUES (?, ?, ?)
	ON CONFLICT (cache_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, time.Now().Add(ttl).UnixNano())
	if err != nil {
		return fmt.Errorf("sqlite cache set: %w", err)
	}
	return nil
}

// Delete removes a value from the cache
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM evidence_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("sqlite cache delete: %w", err)
	}
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *SQLiteCache) Exists(ctx context.Context, key string) (bool, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM evidence_cache WHERE cache_key = ? AND expires_at > ?`,
		key, time.Now().UnixNano(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite cache exists: %w", err)
	}
	return n > 0, nil
}

// CleanExpired deletes expired rows and reports how many were removed
func (c *SQLiteCache) CleanExpired(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM evidence_cache WHERE expires_at <= ?`, time.Now().UnixNano())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Close stops the expiry sweep and closes the database connection
func (c *SQLiteCache) Close() error {
	c.sweeper.stop()
	return c.db.Close()
}
