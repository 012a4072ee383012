// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for all databases (always absolute)
	Port            int
	LogLevel        string
	DevMode         bool
	DefaultLangHint string // Accept-Language fallback when the request carries none

	LLM    LLMConfig
	Backup BackupConfig
}

// LLMConfig holds the optional external layout generator settings.
// Disabled unless an API key is present.
type LLMConfig struct {
	APIKey  string
	BaseURL string // empty = provider default
	Model   string
	Timeout time.Duration
}

// Enabled reports whether the external generator can be constructed.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// BackupConfig holds S3-compatible backup settings for the event log.
type BackupConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	RetentionDays   int // delete backups older than this many days; 0 keeps everything
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory: GENUI_DATA_DIR, defaulting to ./data,
	// always resolved to an absolute path that exists.
	dataDir := getEnv("GENUI_DATA_DIR", "data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("GENUI_PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		DefaultLangHint: getEnv("GENUI_DEFAULT_LANG", "en"),
		LLM: LLMConfig{
			APIKey:  getEnv("GENUI_LLM_API_KEY", ""),
			BaseURL: getEnv("GENUI_LLM_BASE_URL", ""),
			Model:   getEnv("GENUI_LLM_MODEL", "gpt-4o-mini"),
			Timeout: time.Duration(getEnvAsInt("GENUI_LLM_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Backup: BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Backup.Enabled {
		if c.Backup.Endpoint == "" || c.Backup.Bucket == "" {
			return fmt.Errorf("backup enabled but endpoint or bucket missing")
		}
		if c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "" {
			return fmt.Errorf("backup enabled but credentials missing")
		}
	}
	return nil
}

// BehaviorDBPath returns the event log database path.
func (c *Config) BehaviorDBPath() string {
	return filepath.Join(c.DataDir, "behavior.db")
}

// ProfileDBPath returns the profile database path.
func (c *Config) ProfileDBPath() string {
	return filepath.Join(c.DataDir, "profile.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
