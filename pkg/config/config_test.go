package config

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/graphlens/graphlens/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.URL != Default().Backend.URL {
		t.Errorf("Backend.URL = %q, want default", cfg.Backend.URL)
	}
	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[backend]
url = "https://graphs.example.com/stream"

[cache]
backend = "redis"
redis_addr = "cache.example.com:6379"

[layout]
seed = 42
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.URL != "https://graphs.example.com/stream" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Cache.Backend != CacheBackendRedis || cfg.Cache.RedisAddr != "cache.example.com:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Layout.Seed != 42 {
		t.Errorf("Layout.Seed = %d", cfg.Layout.Seed)
	}

	// Sections not in the file keep their defaults.
	if cfg.Archive.Database != "graphlens" {
		t.Errorf("Archive.Database = %q, want default", cfg.Archive.Database)
	}
}

func TestLoadInvalidCacheBackend(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "memcached"
`)

	_, err := Load(path)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := writeConfig(t, "[backend\nurl=")

	_, err := Load(path)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
