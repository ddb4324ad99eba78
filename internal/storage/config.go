package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Session store backends.
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreJSON   = "json"
)

// Config holds application configuration.
type Config struct {
	Strategy      string `json:"strategy"`      // "windowed" or "cached"
	SearchBaseURL string `json:"searchBaseURL"` // fallback search destination
	Database      string `json:"database"`      // history database path; empty = default
	SessionStore  string `json:"sessionStore"`  // "sqlite" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:      "windowed",
		SearchBaseURL: "chrome://history",
		SessionStore:  SessionStoreSQLite,
	}
}

// LoadConfig reads the config file at path. A missing file is created with
// the defaults; fields left empty in an existing file take their defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		// Unwritable config dirs still get a working default config.
		_ = SaveConfig(path, &config)
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fromFile Config
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	config.merge(fromFile)
	return &config, nil
}

// merge copies the non-empty fields of other into c.
func (c *Config) merge(other Config) {
	if other.Strategy != "" {
		c.Strategy = other.Strategy
	}
	if other.SearchBaseURL != "" {
		c.SearchBaseURL = other.SearchBaseURL
	}
	if other.Database != "" {
		c.Database = other.Database
	}
	if other.SessionStore != "" {
		c.SessionStore = other.SessionStore
	}
}

// SaveConfig writes config as indented JSON, creating parent directories.
func SaveConfig(path string, config *Config) error {
	if err := writeJSONAtomic(path, config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// DefaultConfigFilePath returns the default config path: ~/.config/omnihist/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "omnihist", "config.json"), nil
}

// DatabasePath returns the configured database path or the default one.
func (c Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	return DefaultSQLitePath()
}

// OpenSession opens the configured session store.
// The SQLite backend shares db; the JSON backend uses jsonPath.
func OpenSession(c Config, db *SQLiteStorage, jsonPath string) (Storage, error) {
	switch c.SessionStore {
	case SessionStoreJSON:
		return NewJSONStorage(jsonPath), nil
	case SessionStoreSQLite, "":
		return db.KV(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", c.SessionStore)
	}
}
