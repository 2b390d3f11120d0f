package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.BaseURL != "https://api.mealdash.example" {
		t.Fatalf("unexpected default base URL: %q", cfg.BaseURL)
	}
	if cfg.StorageBackend != "file" {
		t.Fatalf("unexpected default backend: %q", cfg.StorageBackend)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected default timeout: %v", cfg.RequestTimeout)
	}
	if cfg.RateLimit != 0 {
		t.Fatalf("unexpected default rate limit: %v", cfg.RateLimit)
	}
}

func TestFromEnvRejectsNegativeRateLimit(t *testing.T) {
	t.Setenv("MEALDASH_RATE_LIMIT", "-1")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for negative rate limit")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MEALDASH_BASE_URL", "https://staging.mealdash.example")
	t.Setenv("MEALDASH_STORAGE", "sqlite")
	t.Setenv("MEALDASH_REQUEST_TIMEOUT", "3s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.BaseURL != "https://staging.mealdash.example" {
		t.Fatalf("base URL override not applied: %q", cfg.BaseURL)
	}
	if cfg.StorageBackend != "sqlite" {
		t.Fatalf("backend override not applied: %q", cfg.StorageBackend)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("timeout override not applied: %v", cfg.RequestTimeout)
	}
}

func TestFromEnvRejectsUnknownBackend(t *testing.T) {
	t.Setenv("MEALDASH_STORAGE", "carrier-pigeon")

	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("base_url: https://eu.mealdash.example\nstorage_backend: memory\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if cfg.BaseURL != "https://eu.mealdash.example" {
		t.Fatalf("base URL not loaded: %q", cfg.BaseURL)
	}
	if cfg.StorageBackend != "memory" {
		t.Fatalf("backend not loaded: %q", cfg.StorageBackend)
	}
	// Fields absent from the file keep defaults.
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("default timeout lost: %v", cfg.RequestTimeout)
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
