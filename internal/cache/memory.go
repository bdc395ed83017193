package cache

import (
	"sync"

	"gallery-go/internal/gallery"
)

// MemoryCache is an in-memory implementation of the DiskCache interface.
// It is useful for tests and for running with persistence disabled.
// This implementation is safe for concurrent use.
type MemoryCache struct {
	records map[string]*gallery.Record
	mu      sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		records: make(map[string]*gallery.Record),
	}
}

// Get returns the cached record for path, or (nil, nil) on a miss.
func (m *MemoryCache) Get(path string) (*gallery.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[path]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Set stores the record for path, replacing any previous value.
func (m *MemoryCache) Set(path string, rec *gallery.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[path] = rec.Clone()
	return nil
}

// Delete removes the record for path. Deleting an absent key is a no-op.
func (m *MemoryCache) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, path)
	return nil
}

// Len returns the number of cached records.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Compile-time check that MemoryCache implements the DiskCache interface
var _ gallery.DiskCache = (*MemoryCache)(nil)
