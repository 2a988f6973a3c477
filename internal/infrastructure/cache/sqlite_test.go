package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
)

func newTestSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "evidence.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCache_SetAndGet(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "evidence:scopus:nature", []byte(`{"indexed":true}`), time.Minute))

	got, err := c.Get(ctx, "evidence:scopus:nature")
	require.NoError(t, err)
	assert.JSONEq(t, `{"indexed":true}`, string(got))
}

func TestSQLiteCache_Miss(t *testing.T) {
	c := newTestSQLiteCache(t)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestSQLiteCache_Overwrite(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("one"), time.Minute))
	require.NoError(t, c.Set(ctx, "k", []byte("two"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestSQLiteCache_Expiry(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", []byte("v"), time.Minute))
	time.Sleep(10 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	exists, err := c.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)

	removed, err := c.CleanExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	exists, err = c.Exists(ctx, "long")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSQLiteCache_Delete(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Delete(ctx, "never-set"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestSQLiteCache_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evidence.db")
	ctx := context.Background()

	first, err := NewSQLiteCache(path, 0)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "evidence:gemini:science", []byte(`{"frequency":"weekly"}`), time.Hour))
	require.NoError(t, first.Close())

	second, err := NewSQLiteCache(path, 0)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "evidence:gemini:science")
	require.NoError(t, err)
	assert.JSONEq(t, `{"frequency":"weekly"}`, string(got))
}

func TestSQLiteCache_InMemory(t *testing.T) {
	c, err := NewSQLiteCache(":memory:", 0)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "evidence:scopus:in-memory", []byte("v"), time.Minute))
	exists, err := c.Exists(ctx, "evidence:scopus:in-memory")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSQLiteCache_SweepsExpiredRows(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "evidence.db"), 5*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("evidence:scopus:journal-%d", i), []byte("v"), time.Millisecond))
	}
	require.NoError(t, c.Set(ctx, "evidence:scopus:kept", []byte("v"), time.Hour))

	countRows := func() int {
		var n int
		require.NoError(t, c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evidence_cache`).Scan(&n))
		return n
	}

	assert.Eventually(t, func() bool { return countRows() == 1 }, 2*time.Second, 10*time.Millisecond)

	exists, err := c.Exists(ctx, "evidence:scopus:kept")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSQLiteCache_CloseStopsSweep(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "evidence.db"), time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, c.Close())

	select {
	case <-c.sweeper.done:
	default:
		t.Fatal("sweep goroutine still running after Close")
	}
}
