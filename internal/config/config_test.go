package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		ServerURL: "https://gallery.example.com",
		BaseDir:   "/home/user/.local/share/gallery",
		LogDir:    "/home/user/.local/share/gallery/log",
		Cache: CacheConfig{
			Type:    "sqlite",
			DataDir: "/home/user/.local/share/gallery/cache",
		},
		Encryption: EncryptionConfig{
			Type:          "age",
			RecipientPath: "/home/user/.local/share/gallery/keys/cache.pub",
			IdentityPath:  "/home/user/.local/share/gallery/keys/cache.key",
		},
		Upload: UploadConfig{
			PollIntervalSeconds: 5,
			ImageAttempts:       3,
			VideoAttempts:       30,
		},
		Search: SearchConfig{PageSize: 25},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.ServerURL != original.ServerURL {
		t.Errorf("ServerURL = %q, want %q", got.ServerURL, original.ServerURL)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Cache.Type != "sqlite" {
		t.Errorf("Cache.Type = %q, want %q", got.Cache.Type, "sqlite")
	}
	if got.Cache.DataDir != original.Cache.DataDir {
		t.Errorf("Cache.DataDir = %q, want %q", got.Cache.DataDir, original.Cache.DataDir)
	}
	if got.Encryption.Type != "age" {
		t.Errorf("Encryption.Type = %q, want %q", got.Encryption.Type, "age")
	}
	if got.Encryption.RecipientPath != original.Encryption.RecipientPath {
		t.Errorf("Encryption.RecipientPath = %q, want %q", got.Encryption.RecipientPath, original.Encryption.RecipientPath)
	}
	if got.Encryption.IdentityPath != original.Encryption.IdentityPath {
		t.Errorf("Encryption.IdentityPath = %q, want %q", got.Encryption.IdentityPath, original.Encryption.IdentityPath)
	}
	if got.Upload.PollIntervalSeconds != 5 {
		t.Errorf("Upload.PollIntervalSeconds = %d, want %d", got.Upload.PollIntervalSeconds, 5)
	}
	if got.Upload.ImageAttempts != 3 {
		t.Errorf("Upload.ImageAttempts = %d, want %d", got.Upload.ImageAttempts, 3)
	}
	if got.Upload.VideoAttempts != 30 {
		t.Errorf("Upload.VideoAttempts = %d, want %d", got.Upload.VideoAttempts, 30)
	}
	if got.Search.PageSize != 25 {
		t.Errorf("Search.PageSize = %d, want %d", got.Search.PageSize, 25)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("https://gallery.example.com", "/data/gallery")

	if cfg.ServerURL != "https://gallery.example.com" {
		t.Errorf("ServerURL = %q, want %q", cfg.ServerURL, "https://gallery.example.com")
	}
	if cfg.BaseDir != "/data/gallery" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/gallery")
	}
	if cfg.LogDir != "/data/gallery/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/gallery/log")
	}
	if cfg.Cache.Type != "sqlite" {
		t.Errorf("Cache.Type = %q, want %q", cfg.Cache.Type, "sqlite")
	}
	if cfg.Cache.DataDir != "/data/gallery/cache" {
		t.Errorf("Cache.DataDir = %q, want %q", cfg.Cache.DataDir, "/data/gallery/cache")
	}
	if cfg.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want %q", cfg.Encryption.Type, "none")
	}
	if cfg.Encryption.RecipientPath != "/data/gallery/keys/cache.pub" {
		t.Errorf("Encryption.RecipientPath = %q, want %q", cfg.Encryption.RecipientPath, "/data/gallery/keys/cache.pub")
	}
	if cfg.Encryption.IdentityPath != "/data/gallery/keys/cache.key" {
		t.Errorf("Encryption.IdentityPath = %q, want %q", cfg.Encryption.IdentityPath, "/data/gallery/keys/cache.key")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "gallery.toml")
		cfg := NewConfig("https://gallery.example.com", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "gallery.toml")
		cfg := NewConfig("https://gallery.example.com", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "gallery.toml")
		cfg := NewConfig("https://read-test.example.com", dir)
		cfg.Cache = CacheConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.ServerURL != "https://read-test.example.com" {
			t.Errorf("ServerURL = %q, want %q", got.ServerURL, "https://read-test.example.com")
		}
		if got.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %q, want %q", got.Cache.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/gallery.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
