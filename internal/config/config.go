package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv           string
	DBPath           string
	DBDriver         string
	RedisAddr        string
	HTTPPort         int
	CacheTTL         time.Duration
	SchedulerEnabled bool
	SchedulerSpec    string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	port, err := strconv.Atoi(getEnv("HTTP_PORT", "8080"))
	if err != nil {
		port = 8080
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		ttl = 10 * time.Minute
	}

	schedulerEnabled, err := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	if err != nil {
		schedulerEnabled = true
	}

	return &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		DBPath:           getEnv("DB_PATH", "./data/database.db"),
		DBDriver:         getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:         port,
		CacheTTL:         ttl,
		SchedulerEnabled: schedulerEnabled,
		SchedulerSpec:    getEnv("SCHEDULER_SPEC", "@hourly"),
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
