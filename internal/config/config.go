// Package config loads and creates the application configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// DataPath is the SQLite database holding the persisted store. An
	// empty value resolves to ~/.config/eventmemo/events.db.
	DataPath string `yaml:"data_path"`

	// ScanSchedule is the reminder sweep cadence in cron syntax
	// (robfig/cron, e.g. "@every 1m").
	ScanSchedule string `yaml:"scan_schedule"`

	// ImportMaxBytes caps the size of pasted or file-sourced import data.
	ImportMaxBytes int `yaml:"import_max_bytes"`

	// StoreMaxBytes caps the size of one persisted document; writes above
	// it fail with a quota error. 0 disables the cap.
	StoreMaxBytes int `yaml:"store_max_bytes"`

	// Passphrase gates mutating commands when non-empty.
	Passphrase string `yaml:"passphrase"`

	// LogLevel selects the zerolog level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ScanSchedule:   "@every 1m",
		ImportMaxBytes: 10 * 1024 * 1024,
		StoreMaxBytes:  5 * 1024 * 1024,
		LogLevel:       "info",
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "eventmemo", "config.yaml"), nil
}

// Load reads the config at path, writing the defaults there first when the
// file does not exist yet.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if werr := Save(path, cfg); werr != nil {
			return nil, werr
		}
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.DataPath == "" {
		cfg.DataPath = filepath.Join(filepath.Dir(path), "events.db")
	}
	return cfg, nil
}

// Save writes the config to path with restrictive permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
