// Package config loads process configuration for the runtime kernel: data
// paths, timing intervals, and the optional off-site/reporting sinks. It
// follows the teacher's load-then-validate shape: godotenv first, then
// environment variables, with a typed Config returned only once every
// required field is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every value the runtime needs at startup.
type Config struct {
	// Filesystem layout (spec §5, §6).
	DataDir    string // holds current/ (live checks) and archive/
	ArchiveDir string

	// Process behavior.
	Env               string
	AutoSaveInterval  time.Duration
	CupsCheckInterval time.Duration
	SystemCallTimeout time.Duration

	// Diagnostics HTTP surface (internal/diag).
	DiagPort string

	Auth0Domain   string
	Auth0Audience string

	// Optional Postgres reporting sink (internal/reportflow). Empty
	// disables it; EndDay still runs the file-based archive pipeline.
	ReportsDatabaseURL string

	// Optional off-site archive backup (internal/objectstore). Empty
	// disables it.
	S3 S3Config

	// License server (internal/license).
	LicenseURL string
}

// S3Config carries the S3/MinIO credentials used to mirror completed
// Archive bundles off-site.
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// Load reads configuration from a .env file (if present) and the process
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:           getEnv("POS_DATA_DIR", "./data"),
		ArchiveDir:        getEnv("POS_ARCHIVE_DIR", "./data/archive"),
		Env:               getEnv("ENV", "development"),
		AutoSaveInterval:  getEnvDuration("POS_AUTOSAVE_INTERVAL", 30*time.Second),
		CupsCheckInterval: getEnvDuration("POS_CUPS_CHECK_INTERVAL", 60*time.Second),
		SystemCallTimeout: getEnvDuration("POS_SYSTEM_CALL_TIMEOUT", 5*time.Second),
		DiagPort:          getEnv("POS_DIAG_PORT", "8080"),
		Auth0Domain:       getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:     getEnv("AUTH0_AUDIENCE", ""),

		ReportsDatabaseURL: getEnv("REPORTS_DATABASE_URL", ""),
		S3: S3Config{
			Endpoint:        getEnv("POS_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("POS_S3_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("POS_S3_SECRET_KEY", ""),
			BucketName:      getEnv("POS_S3_BUCKET", "posk-archive"),
			UseSSL:          getEnvBool("POS_S3_USE_SSL", true),
		},

		LicenseURL: getEnv("POS_LICENSE_URL", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("POS_DATA_DIR is required")
	}
	if c.AutoSaveInterval <= 0 {
		return fmt.Errorf("POS_AUTOSAVE_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return time.Duration(secs) * time.Second
}
