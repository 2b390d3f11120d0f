// Package config loads the client configuration from the environment or
// from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the client core needs at startup.
type Config struct {
	// BaseURL of the remote ordering service.
	BaseURL string `env:"MEALDASH_BASE_URL,default=https://api.mealdash.example" yaml:"base_url"`
	// RequestTimeout is the fixed transport-level timeout on every request.
	RequestTimeout time.Duration `env:"MEALDASH_REQUEST_TIMEOUT,default=15s" yaml:"request_timeout"`
	// StorageBackend selects the key-value store: file, sqlite, redis, or
	// memory.
	StorageBackend string `env:"MEALDASH_STORAGE,default=file" yaml:"storage_backend"`
	// StoragePath is the file/sqlite location; empty means a per-user
	// default under the OS config directory.
	StoragePath string `env:"MEALDASH_STORAGE_PATH,default=" yaml:"storage_path"`
	// RedisAddr is used when StorageBackend is redis.
	RedisAddr string `env:"MEALDASH_REDIS_ADDR,default=127.0.0.1:6379" yaml:"redis_addr"`
	// TokenLeeway enables proactive refresh of access tokens expiring
	// within the window; zero disables it.
	TokenLeeway time.Duration `env:"MEALDASH_TOKEN_LEEWAY,default=30s" yaml:"token_leeway"`
	// RateLimit caps outbound requests per second; zero means unlimited.
	RateLimit float64 `env:"MEALDASH_RATE_LIMIT,default=0" yaml:"rate_limit"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `env:"MEALDASH_LOG_LEVEL,default=info" yaml:"log_level"`
}

// FromEnv loads configuration from the environment, preloading a .env file
// when one exists in the working directory.
func FromEnv() (*Config, error) {
	// A missing .env file is the normal case.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile loads configuration from a YAML file. Fields absent from the
// file keep their defaults.
func FromFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		BaseURL:        "https://api.mealdash.example",
		RequestTimeout: 15 * time.Second,
		StorageBackend: "file",
		RedisAddr:      "127.0.0.1:6379",
		TokenLeeway:    30 * time.Second,
		LogLevel:       "info",
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base URL is required")
	}
	switch c.StorageBackend {
	case "file", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.StorageBackend)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: rate limit must not be negative")
	}
	return nil
}

// ResolveStoragePath returns the configured storage path, or a per-user
// default appropriate for the backend.
func (c *Config) ResolveStoragePath() (string, error) {
	if c.StoragePath != "" {
		return c.StoragePath, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	dir = filepath.Join(dir, "mealdash")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("config: create %s: %w", dir, err)
	}

	switch c.StorageBackend {
	case "sqlite":
		return filepath.Join(dir, "state.db"), nil
	default:
		return filepath.Join(dir, "state.json"), nil
	}
}
