package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the meridian service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP API and monitoring server.
// - ProviderType: The reverse-geocoding provider to use (nominatim, google).
// - APIKey: The API key for the external provider (required for Google).
// - Language: The language code requested from the geocoding provider.
// - Workers: The number of concurrent workers in the background pool.
// - Interval: The duration between dispatcher scans for pending tasks.
// - BatchSize: The number of rows processed per pipeline batch.
// - RateLimit: The allowed reverse-geocoding requests per second.
// - RetryDelay: The fixed backoff between retries of a failed unit of work.
// - MaxAttempts: The retry budget for one unit of work.
// - UploadDir: The directory where uploaded CSV files are stored.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env          string
	Port         int
	ProviderType string
	APIKey       string
	Language     string
	Workers      int
	Interval     time.Duration
	BatchSize    int
	RateLimit    int
	RetryDelay   time.Duration
	MaxAttempts  int
	UploadDir    string
	Database     PostgresConfig
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad loads the configuration from the environment and returns a Config
// struct. It panics if a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	interval, err := time.ParseDuration(setDefaultEnv("MERIDIAN_INTERVAL", "30s"))
	if err != nil {
		panic("failed to parse dispatch interval from configuration")
	}

	retryDelay, err := time.ParseDuration(setDefaultEnv("MERIDIAN_RETRY_DELAY", "10s"))
	if err != nil {
		panic("failed to parse retry delay from configuration")
	}

	return &Config{
		Env:          setDefaultEnv("MERIDIAN_ENV", "production"),
		Port:         mustAtoi("MERIDIAN_PORT", "8080"),
		ProviderType: setDefaultEnv("MERIDIAN_PROVIDER_TYPE", "nominatim"),
		APIKey:       os.Getenv("MERIDIAN_PROVIDER_KEY"),
		Language:     setDefaultEnv("MERIDIAN_LANGUAGE", "ru"),
		Workers:      mustAtoi("MERIDIAN_WORKERS", "10"),
		Interval:     interval,
		BatchSize:    mustAtoi("MERIDIAN_BATCH_SIZE", "1000"),
		RateLimit:    mustAtoi("MERIDIAN_RATE_LIMIT", "1"),
		RetryDelay:   retryDelay,
		MaxAttempts:  mustAtoi("MERIDIAN_MAX_ATTEMPTS", "5"),
		UploadDir:    setDefaultEnv("MERIDIAN_UPLOAD_DIR", "statics/uploads"),
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}

func mustAtoi(key, override string) int {
	value, err := strconv.Atoi(setDefaultEnv(key, override))
	if err != nil {
		panic("failed to parse " + key + " from configuration, must be an integer")
	}

	return value
}
