package cache

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gallery-go/internal/cache/migrations"
	"gallery-go/internal/encryption"
	"gallery-go/internal/gallery"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteCache implements the DiskCache interface on a local SQLite file.
// Records are stored as JSON blobs keyed by path, optionally encrypted at
// rest through a codec. The cache is disposable: schema migrations run
// unconditionally on open, and Purge wipes it whole.
type SQLiteCache struct {
	db    *sql.DB
	codec encryption.Codec
	clock gallery.Clock
}

// NewSQLiteCache opens (creating if needed) the cache database at path.
// path can be a file path or ":memory:". codec may be nil for plaintext
// storage.
func NewSQLiteCache(path string, codec encryption.Codec) (*SQLiteCache, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}

	return &SQLiteCache{db: db, codec: codec, clock: gallery.RealClock{}}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a raw connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Wait for locks instead of failing when a background write overlaps a read.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Get returns the cached record for path, or (nil, nil) on a miss.
func (c *SQLiteCache) Get(path string) (*gallery.Record, error) {
	var (
		blob      []byte
		encrypted bool
	)
	err := c.db.QueryRow("SELECT record, encrypted FROM albums WHERE path = ?", path).Scan(&blob, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %q: %w", path, err)
	}

	if encrypted {
		if c.codec == nil {
			return nil, fmt.Errorf("cache entry %q is encrypted but no codec is configured", path)
		}
		var plain bytes.Buffer
		if err := c.codec.Decrypt(bytes.NewReader(blob), &plain); err != nil {
			return nil, fmt.Errorf("decrypting cache entry %q: %w", path, err)
		}
		blob = plain.Bytes()
	}

	var rec gallery.Record
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, fmt.Errorf("decoding cache entry %q: %w", path, err)
	}
	return &rec, nil
}

// Set stores the record for path, replacing any previous value.
func (c *SQLiteCache) Set(path string, rec *gallery.Record) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding cache entry %q: %w", path, err)
	}

	encrypted := false
	if c.codec != nil {
		var cipher bytes.Buffer
		if err := c.codec.Encrypt(bytes.NewReader(blob), &cipher); err != nil {
			return fmt.Errorf("encrypting cache entry %q: %w", path, err)
		}
		blob = cipher.Bytes()
		encrypted = true
	}

	_, err = c.db.Exec(`
		INSERT INTO albums (path, record, encrypted, cached_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET record = excluded.record,
			encrypted = excluded.encrypted, cached_at = excluded.cached_at`,
		path, blob, encrypted, c.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing cache entry %q: %w", path, err)
	}
	return nil
}

// Delete removes the record for path. Deleting an absent key is a no-op.
func (c *SQLiteCache) Delete(path string) error {
	if _, err := c.db.Exec("DELETE FROM albums WHERE path = ?", path); err != nil {
		return fmt.Errorf("deleting cache entry %q: %w", path, err)
	}
	return nil
}

// CachedAt returns when the entry for path was last written. ok is false on
// a miss.
func (c *SQLiteCache) CachedAt(path string) (t time.Time, ok bool, err error) {
	err = c.db.QueryRow("SELECT cached_at FROM albums WHERE path = ?", path).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading cache timestamp %q: %w", path, err)
	}
	return t, true, nil
}

// Purge deletes every cache entry.
func (c *SQLiteCache) Purge() error {
	if _, err := c.db.Exec("DELETE FROM albums"); err != nil {
		return fmt.Errorf("purging cache: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Compile-time check that SQLiteCache implements the DiskCache interface
var _ gallery.DiskCache = (*SQLiteCache)(nil)
