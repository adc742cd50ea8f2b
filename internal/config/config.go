package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port     string
	LogLevel string

	// Provider configuration
	ProviderBaseURL   string        // e.g. https://ipinfo.io
	AccessToken       string        // Default token when a request carries none
	LookupConcurrency int           // Max in-flight provider requests per batch
	LookupTimeout     time.Duration // Per-request timeout on the HTTP client

	// Outbound TLS/proxy material, read once at startup
	RequestCert       string
	RequestKey        string
	RequestPassphrase string
	RequestCA         string
	RequestProxy      string

	// Inbound rate limiting
	RateLimitType   string // "memory" or "redis"
	RateLimit       int    // number of requests allowed
	RateLimitWindow int    // time window in seconds

	// Ignore list source
	IgnoreStoreType string // "none", "csv", "mysql" or "redis"
	IgnoreListPath  string // path to CSV file

	// MySQL configuration
	MySQLDSN string

	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ProviderBaseURL:   getEnv("PROVIDER_BASE_URL", "https://ipinfo.io"),
		AccessToken:       getEnv("ACCESS_TOKEN", ""),
		LookupConcurrency: getEnvAsInt("LOOKUP_CONCURRENCY", 10),
		LookupTimeout:     getEnvAsDuration("LOOKUP_TIMEOUT", 10*time.Second),

		RequestCert:       getEnv("REQUEST_CERT", ""),
		RequestKey:        getEnv("REQUEST_KEY", ""),
		RequestPassphrase: getEnv("REQUEST_PASSPHRASE", ""),
		RequestCA:         getEnv("REQUEST_CA", ""),
		RequestProxy:      getEnv("REQUEST_PROXY", ""),

		RateLimitType:   getEnv("RATE_LIMITER_TYPE", "memory"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 10),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 1),

		IgnoreStoreType: getEnv("IGNORE_STORE_TYPE", "none"),
		IgnoreListPath:  getEnv("IGNORE_LIST_PATH", "./data/ignore.csv"),

		MySQLDSN: getEnv("MYSQL_DSN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration reads an environment variable as a time.Duration ("10s", "500ms")
// Returns default if not set or invalid
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}

	return value
}
