package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Database    DatabaseConfig
	Remote      RemoteConfig
	Capture     CaptureConfig
	SMTP        SMTPConfig
	JWT         JWTConfig
}

// DatabaseConfig holds the local durable store configuration
type DatabaseConfig struct {
	Path           string
	MigrationsPath string
}

// RemoteConfig holds the remote store client configuration
type RemoteConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	ProbeInterval time.Duration
}

// CaptureConfig tunes the order capture path
type CaptureConfig struct {
	// RetryAttempts is how many times a remote write is retried before the
	// order falls back to the local queue. Zero means fall back immediately.
	RetryAttempts int
}

// SMTPConfig holds email configuration for day-close summaries
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	Recipients []string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOCAL_DB_PATH", "./data/pos.db")
	viper.SetDefault("MIGRATIONS_PATH", "./migrations")
	viper.SetDefault("REMOTE_BASE_URL", "http://localhost:9090")
	viper.SetDefault("REMOTE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("REMOTE_PROBE_INTERVAL_SECONDS", 30)
	viper.SetDefault("CAPTURE_RETRY_ATTEMPTS", 0)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_FROM_NAME", "Butchery POS")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Database: DatabaseConfig{
			Path:           viper.GetString("LOCAL_DB_PATH"),
			MigrationsPath: viper.GetString("MIGRATIONS_PATH"),
		},
		Remote: RemoteConfig{
			BaseURL:       viper.GetString("REMOTE_BASE_URL"),
			APIKey:        viper.GetString("REMOTE_API_KEY"),
			Timeout:       time.Duration(viper.GetInt("REMOTE_TIMEOUT_SECONDS")) * time.Second,
			ProbeInterval: time.Duration(viper.GetInt("REMOTE_PROBE_INTERVAL_SECONDS")) * time.Second,
		},
		Capture: CaptureConfig{
			RetryAttempts: viper.GetInt("CAPTURE_RETRY_ATTEMPTS"),
		},
		SMTP: SMTPConfig{
			Host:       viper.GetString("SMTP_HOST"),
			Port:       viper.GetInt("SMTP_PORT"),
			Username:   viper.GetString("SMTP_USERNAME"),
			Password:   viper.GetString("SMTP_PASSWORD"),
			From:       viper.GetString("SMTP_FROM"),
			FromName:   viper.GetString("SMTP_FROM_NAME"),
			Recipients: splitList(viper.GetString("SMTP_RECIPIENTS")),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
	}

	return config, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt gets an environment variable as integer with a fallback value
func GetEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
