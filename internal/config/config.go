// Package config reads the service settings from the environment, loading a
// .env file first when one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Draft store backends.
const (
	DraftNone     = "none"
	DraftRedis    = "redis"
	DraftPostgres = "postgres"
)

type Config struct {
	Port string
	Env  string

	ERPBaseURL string
	ERPTimeout time.Duration
	JWTSecret  string

	ScannerMaxInterval time.Duration
	ScannerMinLength   int
	ScannerMaxLength   int

	DraftStore  string
	RedisAddr   string
	DraftTTL    time.Duration
	DatabaseURL string
}

// Load reads .env (a missing file is fine) and the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from environment variables only.
func FromEnv() (Config, error) {
	var errs []error
	cfg := Config{
		Port:        getEnv("APP_PORT", "8080"),
		Env:         getEnv("APP_ENV", "production"),
		ERPBaseURL:  strings.TrimRight(getEnv("ERP_BASE_URL", ""), "/"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		DraftStore:  strings.ToLower(getEnv("DRAFT_STORE", DraftNone)),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
	cfg.ERPTimeout = getDuration("ERP_TIMEOUT", 15*time.Second, &errs)
	cfg.ScannerMaxInterval = getDuration("SCANNER_MAX_INTERVAL", 50*time.Millisecond, &errs)
	cfg.ScannerMinLength = getInt("SCANNER_MIN_LENGTH", 8, &errs)
	cfg.ScannerMaxLength = getInt("SCANNER_MAX_LENGTH", 14, &errs)
	cfg.DraftTTL = getDuration("DRAFT_TTL", 12*time.Hour, &errs)

	if cfg.ERPBaseURL == "" {
		errs = append(errs, errors.New("ERP_BASE_URL is required"))
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.ScannerMinLength > cfg.ScannerMaxLength {
		errs = append(errs, errors.New("SCANNER_MIN_LENGTH must not exceed SCANNER_MAX_LENGTH"))
	}
	switch cfg.DraftStore {
	case DraftNone, DraftRedis:
	case DraftPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DRAFT_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DRAFT_STORE must be one of none, redis, postgres (got %q)", cfg.DraftStore))
	}
	return cfg, errors.Join(errs...)
}

func (c Config) Development() bool { return c.Env == "development" }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return fallback
	}
	return d
}

func getInt(key string, fallback int, errs *[]error) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return fallback
	}
	return n
}
