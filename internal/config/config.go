package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey        string
	RequireAPIKey bool

	// Artifacts
	OutputDir       string
	BaseURL         string
	FilenamePrefix  string
	ArtifactTTL     time.Duration
	CleanupInterval time.Duration

	// Request limits
	MaxBodyBytes int64

	// Render records
	RecordTTL time.Duration

	// Brand profile YAML; empty means the built-in brand.
	BrandProfile string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		APIKey:        os.Getenv("REPORTGEN_API_KEY"),
		RequireAPIKey: envBool("REQUIRE_API_KEY", false),

		OutputDir:       envOr("OUTPUT_DIR", "output"),
		BaseURL:         envOr("BASE_URL", ""),
		FilenamePrefix:  envOr("FILENAME_PREFIX", "report"),
		ArtifactTTL:     envDuration("ARTIFACT_TTL", 24*time.Hour),
		CleanupInterval: envDuration("CLEANUP_INTERVAL", 15*time.Minute),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 26214400), // 25MB

		RecordTTL: envDuration("RECORD_TTL", 1*time.Hour),

		BrandProfile: os.Getenv("BRAND_PROFILE"),
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 26214400
	}
	if cfg.ArtifactTTL <= 0 {
		cfg.ArtifactTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 15 * time.Minute
	}
	if cfg.RecordTTL <= 0 {
		cfg.RecordTTL = 1 * time.Hour
	}
	if cfg.FilenamePrefix == "" {
		cfg.FilenamePrefix = "report"
	}

	return cfg
}

func (c Config) Validate() error {
	if c.RequireAPIKey && c.APIKey == "" {
		return fmt.Errorf("REPORTGEN_API_KEY is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
