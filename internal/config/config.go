package config

import (
	"os"
	"strconv"
	"time"

	"bookbridge/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Fieldbook FieldbookConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Data      DataConfig
	Report    ReportConfig
}

// FieldbookConfig holds record-store API settings
type FieldbookConfig struct {
	BaseURL         string
	AccessToken     string
	ActivityAppID   string
	LegacyAppID     string
	EnrollmentAppID string
	RequestTimeout  time.Duration
	PageSize        int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional snapshot store connection.
// Snapshots are disabled when URL is empty.
type DatabaseConfig struct {
	URL string
}

// DataConfig holds aggregation data settings
type DataConfig struct {
	// LegacyCutoff is the date the current schema took over; legacy
	// records on/after it are dropped during the merge
	LegacyCutoff   time.Time
	CacheTTL       time.Duration
	LegacyCacheTTL time.Duration
}

// ReportConfig holds Excel report generation settings
type ReportConfig struct {
	OutputPath string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	fieldbook, err := loadFieldbookConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load record store configuration")
	}

	data, err := loadDataConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load data configuration")
	}

	return &Config{
		Fieldbook: *fieldbook,
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Data: *data,
		Report: ReportConfig{
			OutputPath: getEnvOrDefault("REPORT_OUTPUT", "bookbridge_report.xlsx"),
		},
	}, nil
}

func loadFieldbookConfig() (*FieldbookConfig, error) {
	token := os.Getenv("FIELDBOOK_ACCESS_TOKEN")
	if token == "" {
		return nil, errors.ConfigInvalid("FIELDBOOK_ACCESS_TOKEN is required")
	}

	return &FieldbookConfig{
		BaseURL:         getEnvOrDefault("FIELDBOOK_BASE_URL", "https://api.fieldbook.example/v3"),
		AccessToken:     token,
		ActivityAppID:   getEnvOrDefault("ACTIVITY_APP_ID", ""),
		LegacyAppID:     getEnvOrDefault("LEGACY_APP_ID", ""),
		EnrollmentAppID: getEnvOrDefault("ENROLLMENT_APP_ID", ""),
		RequestTimeout:  getEnvDurationOrDefault("FIELDBOOK_TIMEOUT", 30*time.Second),
		PageSize:        getEnvIntOrDefault("FIELDBOOK_PAGE_SIZE", 1000),
	}, nil
}

func loadDataConfig() (*DataConfig, error) {
	cutoffRaw := getEnvOrDefault("LEGACY_CUTOFF_DATE", "2025-07-01")
	cutoff, err := time.Parse("2006-01-02", cutoffRaw)
	if err != nil {
		return nil, errors.ConfigInvalid("LEGACY_CUTOFF_DATE must be YYYY-MM-DD")
	}

	return &DataConfig{
		LegacyCutoff: cutoff,
		CacheTTL:     getEnvDurationOrDefault("CACHE_TTL", time.Hour),
		// Legacy data changes infrequently
		LegacyCacheTTL: getEnvDurationOrDefault("LEGACY_CACHE_TTL", 72*time.Hour),
	}, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
