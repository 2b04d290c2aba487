package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Runtime settings for the server, read from the environment.
type Config struct {
	Port              string
	DatabaseURL       string
	SolverMode        string
	SolverURL         string
	SolverTimeout     time.Duration
	OSRMURL           string
	OSRMTimeout       time.Duration
	RedisURL          string
	ClaimTTL          time.Duration
	GenerateRateLimit float64
	AppEnv            string
	SeedPath          string
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Duration parses key as a time.Duration ("30s", "1m"); unset or invalid values yield fallback.
func Duration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func Int(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func Float(key string, fallback float64) float64 {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// Load reads every setting, applying defaults. DATABASE_URL is required.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              Get("PORT", "8080"),
		DatabaseURL:       Get("DATABASE_URL", ""),
		SolverMode:        strings.ToLower(Get("SOLVER_MODE", "http")),
		SolverURL:         Get("SOLVER_URL", "http://localhost:8000/post"),
		SolverTimeout:     Duration("SOLVER_TIMEOUT", 30*time.Second),
		OSRMURL:           strings.TrimRight(Get("OSRM_URL", "http://localhost:5000"), "/"),
		OSRMTimeout:       Duration("OSRM_TIMEOUT", 10*time.Second),
		RedisURL:          Get("REDIS_URL", ""),
		ClaimTTL:          Duration("CLAIM_TTL", 5*time.Minute),
		GenerateRateLimit: Float("GENERATE_RATE_LIMIT", 2),
		AppEnv:            Get("APP_ENV", "production"),
		SeedPath:          Get("SEED_PATH", "data/seeds/demo.json"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("load config: DATABASE_URL is required")
	}
	if cfg.SolverMode != "http" && cfg.SolverMode != "greedy" {
		return nil, fmt.Errorf("load config: SOLVER_MODE must be http or greedy, got %q", cfg.SolverMode)
	}

	return cfg, nil
}
