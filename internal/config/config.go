package config

import (
	"os"
	"strconv"
)

const (
	defaultEnv      = "dev"
	defaultDBPath   = "./brewbox.db"
	defaultPort     = "8080"
	defaultLogLevel = "info"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	DBPath        string
	Port          string
	OperatorToken string
	MaxSugarLevel int
	LogLevel      string

	warnings []string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// A missing .env is fine; production injects the environment directly.
	_ = loadDotEnv(".env")

	cfg := Config{
		Env:           os.Getenv("APP_ENV"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		OperatorToken: os.Getenv("OPERATOR_TOKEN"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	if raw := os.Getenv("MAX_SUGAR_LEVEL"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			cfg.warnings = append(cfg.warnings, "MAX_SUGAR_LEVEL is not a non-negative integer, sugar level left unbounded")
		} else {
			cfg.MaxSugarLevel = n
		}
	}

	if cfg.OperatorToken == "" {
		cfg.warnings = append(cfg.warnings, "OPERATOR_TOKEN is not set, restocking endpoints are disabled")
	}

	return cfg
}

// IsDev reports whether the app runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// Warnings lists non-fatal problems found while loading.
func (c Config) Warnings() []string {
	return append([]string(nil), c.warnings...)
}
