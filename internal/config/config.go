package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Search      SearchConfig      `yaml:"search"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Logging     LoggingConfig     `yaml:"logging"`
	Timezone    string            `yaml:"timezone"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// RateLimitConfig contains per-account upload throttling settings
type RateLimitConfig struct {
	Enabled          bool `yaml:"enabled"`
	UploadsPerMinute int  `yaml:"uploads_per_minute"`
	UploadsPerHour   int  `yaml:"uploads_per_hour"`
	UploadsPerDay    int  `yaml:"uploads_per_day"`
}

// IngestConfig contains ingestion pipeline settings
type IngestConfig struct {
	MapWorkers     int   `yaml:"map_workers"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	PreviewSize    int   `yaml:"preview_size"`
}

// MaintenanceConfig contains nightly maintenance settings
type MaintenanceConfig struct {
	DailyRunEnabled bool   `yaml:"daily_run_enabled"`
	DailyRunTime    string `yaml:"daily_run_time"`
	RetentionDays   int    `yaml:"retention_days"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		RateLimit: RateLimitConfig{
			Enabled:          true,
			UploadsPerMinute: 6,
			UploadsPerHour:   60,
			UploadsPerDay:    200,
		},
		Ingest: IngestConfig{
			MapWorkers:     4,
			MaxUploadBytes: 10 << 20, // 10 MiB
			PreviewSize:    5,
		},
		Maintenance: MaintenanceConfig{
			DailyRunEnabled: false,
			DailyRunTime:    "03:00",
			RetentionDays:   180,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
