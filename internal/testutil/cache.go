package testutil

import (
	"testing"

	"gallery-go/internal/cache"
	"gallery-go/internal/encryption"
	"gallery-go/internal/gallery"
)

// NewTestCache creates an in-memory SQLite cache with schema applied. The
// cache is automatically closed when the test completes.
func NewTestCache(t *testing.T) *cache.SQLiteCache {
	t.Helper()

	c, err := cache.NewSQLiteCache(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	t.Cleanup(func() {
		c.Close()
	})

	return c
}

// NewEncryptedTestCache is NewTestCache with the marker test codec wired in.
func NewEncryptedTestCache(t *testing.T) *cache.SQLiteCache {
	t.Helper()

	c, err := cache.NewSQLiteCache(":memory:", NewTestCodec())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	t.Cleanup(func() {
		c.Close()
	})

	return c
}

// NewTestCodec creates the marker-prefix codec for testing.
func NewTestCodec() encryption.Codec {
	return encryption.NewTestCodec()
}

// NewMemoryCache creates an in-process map cache.
func NewMemoryCache() gallery.DiskCache {
	return cache.NewMemoryCache()
}
