package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

type Config struct {
	DatabaseURL     string
	Port            string
	LogLevel        string
	CORSOrigin      string
	MetricsEnabled  bool
	MetricsToken    string
	WriteLimit      int
	ShutdownTimeout time.Duration
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", os.Getenv("db_url")),
		Port:         getEnv("PORT", "8082"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigin:   getEnv("CORS_ORIGIN", ""),
		MetricsToken: getEnv("METRICS_TOKEN", ""),
	}

	var err error
	if cfg.MetricsEnabled, err = strconv.ParseBool(getEnv("METRICS_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("METRICS_ENABLED: %w", err)
	}
	if cfg.WriteLimit, err = strconv.Atoi(getEnv("WRITE_LIMIT_PER_MIN", "0")); err != nil {
		return nil, fmt.Errorf("WRITE_LIMIT_PER_MIN: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
