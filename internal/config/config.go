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

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported local store codecs
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Config holds application configuration shared by the API server and the dashboard client
type Config struct {
	DataDir  string // Base directory for SQLite files (always absolute)
	LogLevel string
	DevMode  bool

	// Backend
	APIPort        int
	DatabaseDriver string
	DatabaseURL    string // PostgreSQL DSN, only used when DatabaseDriver is postgres

	// Client
	DashboardPort        int
	APIBaseURL           string
	APITimeout           time.Duration
	UserID               int64
	AutosaveInterval     time.Duration
	PriceTickInterval    time.Duration
	MarketStatusInterval time.Duration
	LocalStoreCodec      string

	Backup *BackupConfig
}

// BackupConfig holds S3/R2 backup settings for exported snapshots
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // empty = AWS S3, otherwise an S3-compatible endpoint (R2, MinIO)
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Schedule        string // cron expression for the scheduled backup job
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("STOXY_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		APIPort:              getEnvAsInt("API_PORT", 3000),
		DatabaseDriver:       getEnv("DB_DRIVER", DriverSQLite),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DashboardPort:        getEnvAsInt("DASHBOARD_PORT", 8080),
		APIBaseURL:           getEnv("API_BASE_URL", "http://localhost:3000"),
		APITimeout:           getEnvAsDuration("API_TIMEOUT", 10*time.Second),
		UserID:               int64(getEnvAsInt("STOXY_USER_ID", 1)),
		AutosaveInterval:     getEnvAsDuration("AUTOSAVE_INTERVAL", 30*time.Second),
		PriceTickInterval:    getEnvAsDuration("PRICE_TICK_INTERVAL", 5*time.Second),
		MarketStatusInterval: getEnvAsDuration("MARKET_STATUS_INTERVAL", 60*time.Second),
		LocalStoreCodec:      getEnv("LOCALSTORE_CODEC", CodecJSON),
		Backup:               loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER is %s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseDriver)
	}

	switch c.LocalStoreCodec {
	case CodecJSON, CodecMsgpack:
	default:
		return fmt.Errorf("unsupported LOCALSTORE_CODEC %q", c.LocalStoreCodec)
	}

	if c.UserID <= 0 {
		return fmt.Errorf("STOXY_USER_ID must be positive, got %d", c.UserID)
	}

	if c.AutosaveInterval <= 0 || c.PriceTickInterval <= 0 || c.MarketStatusInterval <= 0 {
		return fmt.Errorf("scheduler intervals must be positive")
	}

	if c.Backup != nil && c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf("BACKUP_BUCKET is required when BACKUP_ENABLED is set")
	}

	return nil
}

// SQLitePath returns the path of a named SQLite database inside DataDir
func (c *Config) SQLitePath(name string) string {
	return filepath.Join(c.DataDir, name+".db")
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

// getEnvAsDuration accepts Go durations ("30s") or bare milliseconds ("30000")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
		Bucket:          getEnv("BACKUP_BUCKET", ""),
		Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
		Region:          getEnv("BACKUP_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("BACKUP_PREFIX", "stoxy/"),
		Schedule:        getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"), // 03:00 daily
	}
}
