// Package config loads application configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverMinio = "minio"
	DriverGCS   = "gcs"
	DriverDisk  = "disk"
)

// DiskPublicPath is where the server exposes the disk driver's directory.
const DiskPublicPath = "/files"

// Config holds all runtime configuration for the service.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// DatabaseURL enables the upload journal when set.
	DatabaseURL string

	// Object storage. STORAGE_DRIVER picks the backend; the S3 fields are used by
	// the minio driver, the bucket by both minio and gcs, StorageDir by disk.
	StorageDriver     string
	StorageEndpoint   string
	StorageAccessKey  string
	StorageSecretKey  string
	StorageBucket     string
	StorageUseSSL     bool
	StoragePublicBase string // browser-accessible base URL, e.g. "http://localhost:9000/memes"
	StorageDir        string

	MaxUploadBytes     int64
	SessionIdleTimeout time.Duration
	// MaxSessions bounds the live pages held in memory.
	MaxSessions int
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	driver := getEnv("STORAGE_DRIVER", DriverMinio)
	publicBase := "http://localhost:9000/memes"
	switch driver {
	case DriverDisk:
		publicBase = DiskPublicPath
	case DriverGCS:
		publicBase = "" // storage.googleapis.com
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StorageDriver:     driver,
		StorageEndpoint:   getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey:  getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
		StorageSecretKey:  getEnv("STORAGE_SECRET_KEY", "minioadmin"),
		StorageBucket:     getEnv("STORAGE_BUCKET", "memes"),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StoragePublicBase: getEnv("STORAGE_PUBLIC_BASE", publicBase),
		StorageDir:        getEnv("STORAGE_DIR", "./data/memes"),

		MaxUploadBytes:     getInt64("MAX_UPLOAD_BYTES", 50<<20),
		SessionIdleTimeout: getDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		MaxSessions:        int(getInt64("MAX_SESSIONS", 1000)),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// JournalEnabled reports whether upload outcomes should be persisted.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v)
		return fallback
	}
	return d
}
