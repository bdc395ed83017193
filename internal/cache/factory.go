package cache

import (
	"fmt"
	"path/filepath"

	"gallery-go/internal/config"
	"gallery-go/internal/encryption"
	"gallery-go/internal/gallery"
)

// NewCacheFromConfig creates a DiskCache implementation based on the cache
// config type. codec may be nil for plaintext storage.
func NewCacheFromConfig(cfg config.CacheConfig, codec encryption.Codec) (gallery.DiskCache, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryCache(), nil
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite cache requires data_dir to be set")
		}
		return NewSQLiteCache(filepath.Join(cfg.DataDir, "gallery-cache.db"), codec)
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
