package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Upstream finance API
	APIBaseURL      string
	UpstreamTimeout time.Duration

	// Sessions (empty DatabaseURL keeps sessions in memory)
	DatabaseURL string
	SessionTTL  time.Duration

	// Server
	Port        string
	PublicURL   string // advertised in the OpenAPI servers list when set
	CORSOrigins []string
	Env         string

	// Login throttling per client IP
	LoginRateLimit int
	LoginBurst     int

	// Dashboard
	AggregateCacheSize int64
	ExportDateLayout   string

	// S3 export archive (empty Bucket disables archiving)
	S3 S3Config
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
	URLExpiry       time.Duration
}

// Enabled reports whether an archive bucket is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		UpstreamTimeout:    getDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SessionTTL:         getDuration("SESSION_TTL", 24*time.Hour),
		Port:               getEnv("PORT", "8080"),
		PublicURL:          getEnv("PUBLIC_URL", ""),
		CORSOrigins:        strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:                getEnv("ENV", "development"),
		LoginRateLimit:     getInt("LOGIN_RATE_LIMIT", 10),
		LoginBurst:         getInt("LOGIN_BURST", 5),
		AggregateCacheSize: int64(getInt("AGGREGATE_CACHE_SIZE", 1000)),
		ExportDateLayout:   getEnv("EXPORT_DATE_LAYOUT", "1/2/2006"),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
			URLExpiry:       getDuration("S3_URL_EXPIRY", 15*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.LoginRateLimit <= 0 || c.LoginBurst <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT and LOGIN_BURST must be positive")
	}
	if c.AggregateCacheSize < 0 {
		return fmt.Errorf("AGGREGATE_CACHE_SIZE must not be negative")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
