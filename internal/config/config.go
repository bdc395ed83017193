package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for gallery.
type Config struct {
	ServerURL  string           `toml:"server_url"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Cache      CacheConfig      `toml:"cache"`
	Encryption EncryptionConfig `toml:"encryption"`
	Upload     UploadConfig     `toml:"upload"`
	Search     SearchConfig     `toml:"search"`
}

// CacheConfig represents configuration for the persistent album cache.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type CacheConfig struct {
	Type    string `toml:"type"`               // "sqlite" (default) or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// EncryptionConfig controls at-rest encryption of cache entries.
type EncryptionConfig struct {
	Type          string `toml:"type"` // "none" (default), "age" or "test"
	RecipientPath string `toml:"recipient_path,omitempty"`
	IdentityPath  string `toml:"identity_path,omitempty"`
}

// UploadConfig tunes the post-upload processing poll. Zero values fall back
// to the built-in policy defaults.
type UploadConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
	ImageAttempts       int `toml:"image_attempts"`
	VideoAttempts       int `toml:"video_attempts"`
}

// SearchConfig tunes search pagination.
type SearchConfig struct {
	PageSize int `toml:"page_size"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(serverURL, baseDir string) *Config {
	return &Config{
		ServerURL: serverURL,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Cache: CacheConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "cache"),
		},
		Encryption: EncryptionConfig{
			Type:          "none",
			RecipientPath: filepath.Join(baseDir, "keys", "cache.pub"),
			IdentityPath:  filepath.Join(baseDir, "keys", "cache.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
