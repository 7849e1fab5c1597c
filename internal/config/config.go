// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxFileSize is the upload ceiling when MAX_FILE_SIZE is unset (5 GiB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024 * 1024

// DefaultAllowedMimeTypes is the content-type allow list when ALLOWED_MIME_TYPES is unset.
var DefaultAllowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/pdf",
	"text/plain",
	"application/json",
	"application/octet-stream",
	"text/csv",
	"text/markdown",
}

// Config holds all runtime configuration for the service.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	// Process-wide storage credentials; requests may override either key.
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3BucketName       string

	// Object storage backend ("s3" uses the AWS SDK, "minio" any S3-compatible endpoint)
	StorageDriver    string
	StorageEndpoint  string // empty means the AWS regional endpoint
	StorageUseSSL    bool
	StoragePathStyle bool

	// Upload policy
	MaxFileSize      int64
	AllowedMimeTypes []string
	MaxRetries       int
	RetryBaseDelay   time.Duration
	PresignExpiry    time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, reading from environment")
	}

	return &Config{
		Port:     getEnv("PORT", "8000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", ""),

		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", "s3")),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageUseSSL:    getEnv("STORAGE_USE_SSL", "true") == "true",
		StoragePathStyle: getEnv("STORAGE_PATH_STYLE", "false") == "true",

		MaxFileSize:      getInt64("MAX_FILE_SIZE", DefaultMaxFileSize),
		AllowedMimeTypes: getList("ALLOWED_MIME_TYPES", DefaultAllowedMimeTypes),
		MaxRetries:       int(getInt64("UPLOAD_MAX_RETRIES", 3)),
		RetryBaseDelay:   getDuration("UPLOAD_RETRY_BASE_DELAY", time.Second),
		PresignExpiry:    getDuration("PRESIGN_EXPIRY", time.Hour),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MaxFileSizeMB reports the upload ceiling in mebibytes.
func (c *Config) MaxFileSizeMB() float64 {
	return float64(c.MaxFileSize) / (1024 * 1024)
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
	if err != nil || n < 0 {
		log.WithField("key", key).Warnf("invalid integer %q, using default %d", v, fallback)
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
	if err != nil || d < 0 {
		log.WithField("key", key).Warnf("invalid duration %q, using default %s", v, fallback)
		return fallback
	}
	return d
}

// getList splits a comma-separated value, dropping blanks.
func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
