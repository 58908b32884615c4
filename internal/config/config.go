// Package config provides settings loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultRateLimit      = 10
	MaxRateLimit          = 100
	DefaultTimeoutSeconds = 60
	DefaultStorageDir     = ".cv-builder"
	DefaultAddr           = ":8080"
	DefaultLogLevel       = "info"
)

// Config holds the application settings. It can be loaded from a JSON file and
// overridden from the environment. Unset fields fall back to defaults.
type Config struct {
	// Generation
	APIKey         string `json:"api_key,omitempty"`         // Gemini API key
	Model          string `json:"model,omitempty"`           // Overrides every model tier
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"` // Per-generation deadline

	// Access
	RateLimit         int   `json:"rate_limit,omitempty"`          // Generations per user or IP per hour
	AllowGuestUsage   *bool `json:"allow_guest_usage,omitempty"`   // Generation without login
	EnableSaveFeature *bool `json:"enable_save_feature,omitempty"` // Saved CV endpoints

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL    string `json:"redis_url,omitempty"`    // Working document store; file store when empty
	StorageDir  string `json:"storage_dir,omitempty"`  // Directory for the file store

	// Server
	Addr     string `json:"addr,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	allow, save := true, true
	return Config{
		TimeoutSeconds:    DefaultTimeoutSeconds,
		RateLimit:         DefaultRateLimit,
		AllowGuestUsage:   &allow,
		EnableSaveFeature: &save,
		StorageDir:        DefaultStorageDir,
		Addr:              DefaultAddr,
		LogLevel:          DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load reads the optional file at path, applies environment overrides and
// fills the remaining fields from Defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("GEMINI_API_KEY", &c.APIKey)
	str("GEMINI_MODEL", &c.Model)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_URL", &c.RedisURL)
	str("CV_STORAGE_DIR", &c.StorageDir)
	str("CV_ADDR", &c.Addr)
	str("LOG_LEVEL", &c.LogLevel)

	for key, dst := range map[string]*int{
		"CV_RATE_LIMIT":      &c.RateLimit,
		"CV_TIMEOUT_SECONDS": &c.TimeoutSeconds,
	} {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %v", key, err)
			}
			*dst = n
		}
	}
	for key, dst := range map[string]**bool{
		"CV_ALLOW_GUEST_USAGE":   &c.AllowGuestUsage,
		"CV_ENABLE_SAVE_FEATURE": &c.EnableSaveFeature,
	} {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %v", key, err)
			}
			*dst = &b
		}
	}
	return nil
}

// Validate checks that the configuration has valid values. The API key is not
// required here since read-only commands run without one.
func (c *Config) Validate() error {
	if c.RateLimit < 0 {
		return fmt.Errorf("config error: 'rate_limit' must be non-negative")
	}
	if c.RateLimit > MaxRateLimit {
		return fmt.Errorf("config error: 'rate_limit' must be at most %d", MaxRateLimit)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown 'log_level' %q", c.LogLevel)
	}
	if c.DatabaseURL != "" && !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("config error: 'database_url' must be a postgres:// URL")
	}
	if c.RedisURL != "" && !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		return fmt.Errorf("config error: 'redis_url' must be a redis:// URL")
	}
	return nil
}

// RequireAPIKey reports an error when no Gemini key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("API key is not configured: set GEMINI_API_KEY or 'api_key'")
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	for _, f := range []struct{ dst, def *string }{
		{&result.APIKey, &defaults.APIKey},
		{&result.Model, &defaults.Model},
		{&result.DatabaseURL, &defaults.DatabaseURL},
		{&result.RedisURL, &defaults.RedisURL},
		{&result.StorageDir, &defaults.StorageDir},
		{&result.Addr, &defaults.Addr},
		{&result.LogLevel, &defaults.LogLevel},
	} {
		if *f.dst == "" {
			*f.dst = *f.def
		}
	}

	if result.RateLimit == 0 {
		result.RateLimit = defaults.RateLimit
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}

	if result.AllowGuestUsage == nil {
		result.AllowGuestUsage = defaults.AllowGuestUsage
	}
	if result.EnableSaveFeature == nil {
		result.EnableSaveFeature = defaults.EnableSaveFeature
	}

	return result
}

// GuestsAllowed resolves AllowGuestUsage; unset means allowed.
func (c *Config) GuestsAllowed() bool {
	return c.AllowGuestUsage == nil || *c.AllowGuestUsage
}

// SaveEnabled resolves EnableSaveFeature; unset means enabled.
func (c *Config) SaveEnabled() bool {
	return c.EnableSaveFeature == nil || *c.EnableSaveFeature
}

// Timeout returns the generation deadline.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
