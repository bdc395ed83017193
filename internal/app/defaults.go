package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - GALLERY_CONFIG_PATH: config file location (default: ~/.config/gallery.toml)
//   - GALLERY_HOME: base directory for gallery data (default: ~/.local/share/gallery)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path":  configPath,
		"base_dir":     baseDir,
		"log_dir":      filepath.Join(baseDir, "log"),
		"session_path": filepath.Join(baseDir, "session.json"),
	}, nil
}

// getConfigPath returns the config file path, checking GALLERY_CONFIG_PATH env var first,
// then falling back to the default ~/.config/gallery.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("GALLERY_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "gallery.toml"), nil
}

// getBaseDir returns the base directory for gallery data, checking GALLERY_HOME env var first,
// then falling back to the XDG default ~/.local/share/gallery.
func getBaseDir() (string, error) {
	if path := os.Getenv("GALLERY_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "gallery"), nil
}
