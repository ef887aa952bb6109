package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings backends
const (
	SettingsBackendPostgres = "postgres"
	SettingsBackendRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	App      AppConfig
	Admin    AdminConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis connection settings, used by the redis settings backend
type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	SettingsKey string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Environment     string
	LogLevel        string
	LogFile         string
	BaseURL         string // Public base URL used in generated redirect links
	SettingsBackend string // Where analytics settings are stored: postgres or redis
	EnableMetrics   bool
}

// AdminConfig holds the Basic auth credentials of the admin pages.
// Both empty disables authentication.
type AdminConfig struct {
	User     string
	Password string
}

// Load reads configuration from environment variables. When envFile is set,
// it is loaded first; variables already present in the environment win.
// A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	port := getEnv("SERVER_PORT", "8080")

	cfg := &Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     parseDuration("SERVER_READ_TIMEOUT", "10s"),
			WriteTimeout:    parseDuration("SERVER_WRITE_TIMEOUT", "10s"),
			IdleTimeout:     parseDuration("SERVER_IDLE_TIMEOUT", "120s"),
			ShutdownTimeout: parseDuration("SERVER_SHUTDOWN_TIMEOUT", "30s"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "redirects"),
			Password:        getEnv("DB_PASSWORD", "dev_password_123"),
			DBName:          getEnv("DB_NAME", "redirects"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
			AutoMigrate:     parseBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          parseInt("REDIS_DB", 0),
			SettingsKey: getEnv("REDIS_SETTINGS_KEY", "redirect-analytics:settings"),
		},
		App: AppConfig{
			Environment:     getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			LogFile:         getEnv("LOG_FILE", ""),
			BaseURL:         strings.TrimRight(getEnv("BASE_URL", "http://localhost:"+port), "/"),
			SettingsBackend: strings.ToLower(getEnv("SETTINGS_BACKEND", SettingsBackendPostgres)),
			EnableMetrics:   parseBool("ENABLE_METRICS", true),
		},
		Admin: AdminConfig{
			User:     getEnv("ADMIN_USER", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that have no usable fallback
func (c *Config) Validate() error {
	switch c.App.SettingsBackend {
	case SettingsBackendPostgres, SettingsBackendRedis:
	default:
		return fmt.Errorf("invalid SETTINGS_BACKEND %q: want %s or %s",
			c.App.SettingsBackend, SettingsBackendPostgres, SettingsBackendRedis)
	}

	if !strings.HasPrefix(c.App.BaseURL, "http://") && !strings.HasPrefix(c.App.BaseURL, "https://") {
		return fmt.Errorf("invalid BASE_URL %q: must be an absolute http(s) URL", c.App.BaseURL)
	}

	if (c.Admin.User == "") != (c.Admin.Password == "") {
		return errors.New("ADMIN_USER and ADMIN_PASSWORD must be set together")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address in host:port format
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		// Fall back to the default on a malformed value
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
