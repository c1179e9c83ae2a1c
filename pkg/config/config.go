// Package config loads GraphLens configuration from a TOML file.
//
// Configuration lives at ~/.config/graphlens/config.toml (respecting
// XDG overrides via os.UserConfigDir). A missing file is not an error;
// every field has a usable default so the CLI works out of the box
// against a local backend.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	apperrors "github.com/graphlens/graphlens/pkg/errors"
)

// Backend selection for the cache.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the full user configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Cache   CacheConfig   `toml:"cache"`
	Archive ArchiveConfig `toml:"archive"`
	Layout  LayoutConfig  `toml:"layout"`
}

// BackendConfig points at the streaming query backend.
type BackendConfig struct {
	// URL is the streaming endpoint.
	URL string `toml:"url"`
	// SessionID ties successive queries to one backend conversation.
	SessionID string `toml:"session_id"`
}

// CacheConfig selects and configures the pipeline cache.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend string `toml:"backend"`
	// Dir is the file backend's directory. Empty means the user cache
	// dir (~/.cache/graphlens).
	Dir string `toml:"dir"`
	// RedisAddr is the redis backend's host:port.
	RedisAddr string `toml:"redis_addr"`
}

// ArchiveConfig configures the optional MongoDB snapshot archive.
type ArchiveConfig struct {
	Enabled    bool   `toml:"enabled"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// LayoutConfig holds layout defaults.
type LayoutConfig struct {
	// Seed fixes the layout seed for reproducible renders. Zero draws
	// a fresh seed per layout.
	Seed int64 `toml:"seed"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			URL: "http://localhost:8080/api/query/stream",
		},
		Cache: CacheConfig{
			Backend:   CacheBackendFile,
			RedisAddr: "localhost:6379",
		},
		Archive: ArchiveConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "graphlens",
			Collection: "snapshots",
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "graphlens", "config.toml"), nil
}

// DefaultCacheDir returns the file cache location used when
// Cache.Dir is empty.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "graphlens"), nil
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"cache.backend must be file, redis, or none (got %q)", c.Cache.Backend)
	}
	if c.Backend.URL == "" {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "backend.url must not be empty")
	}
	return nil
}
