package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Session  SessionConfig
	Worker   WorkerConfig
	Jobs     JobsConfig
	Log      LogConfig

	// EnvFileLoaded reports whether a .env file was found
	EnvFileLoaded bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Schema   string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DB       int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
}

// SessionConfig holds the timings of the interactive view sessions
type SessionConfig struct {
	AutoReturnDelay    time.Duration
	NameBlurGrace      time.Duration
	MaxNameSuggestions int
	IdleTTL            time.Duration
	SweepInterval      time.Duration
}

// WorkerConfig sizes the feature-request insert pool
type WorkerConfig struct {
	Count     int
	QueueSize int
}

// JobsConfig holds background job configuration.
// A zero RefreshInterval disables the periodic reload.
type JobsConfig struct {
	RefreshInterval time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string
	Development bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	loaded := true
	// Load .env file from the parent directory first, then the current one
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(); err != nil {
			loaded = false
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Schema:   getEnv("DB_SCHEMA", "pickleball_ratings"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Username: getEnv("REDIS_USERNAME", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port: getEnvAsInt("BACKEND_PORT", 8000),
		},
		Session: SessionConfig{
			AutoReturnDelay:    getEnvAsDuration("SESSION_AUTO_RETURN_DELAY", 3*time.Second),
			NameBlurGrace:      getEnvAsDuration("SESSION_NAME_BLUR_GRACE", 200*time.Millisecond),
			MaxNameSuggestions: getEnvAsInt("SESSION_MAX_NAME_SUGGESTIONS", 5),
			IdleTTL:            getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute),
			SweepInterval:      getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		Worker: WorkerConfig{
			Count:     getEnvAsInt("WORKER_COUNT", 4),
			QueueSize: getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
		Jobs: JobsConfig{
			RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", 0),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		EnvFileLoaded: loaded,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Session.AutoReturnDelay <= 0 {
		return fmt.Errorf("SESSION_AUTO_RETURN_DELAY must be positive, got %v", c.Session.AutoReturnDelay)
	}
	if c.Session.MaxNameSuggestions <= 0 {
		return fmt.Errorf("SESSION_MAX_NAME_SUGGESTIONS must be positive, got %d", c.Session.MaxNameSuggestions)
	}
	if c.Session.IdleTTL <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Worker.Count <= 0 || c.Worker.QueueSize <= 0 {
		return fmt.Errorf("worker count and queue size must be positive")
	}
	if c.Jobs.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL cannot be negative")
	}
	return nil
}

// GetDSN returns the PostgreSQL DSN
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("3s", "250ms")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
