// Package config provides configuration file parsing for pkgsentry.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMissing indicates the package manager config file does not exist.
// This is never silently defaulted: the operator must run 'pkgsentry init'.
var ErrMissing = errors.New("config file not found; run 'pkgsentry init' to re-initialize")

// ErrCorrupt indicates the config file exists but could not be parsed.
var ErrCorrupt = errors.New("config file is corrupt; run 'pkgsentry init' to re-initialize")

// Config is the package manager's configuration, read once at process start
// and passed into each component. Components never read the environment or
// the filesystem for configuration themselves.
type Config struct {
	IsCollectingStats bool `json:"is_collecting_stats"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w (looked in %s)", ErrMissing, path)
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w (%s: %v)", ErrCorrupt, path, err)
	}

	return &cfg, nil
}

// Save writes the config file at path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// Dir returns the pkgsentry state directory, respecting XDG_STATE_HOME.
// Defaults to ~/.local/state/pkgsentry if XDG_STATE_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(base, "pkgsentry"), nil
}
