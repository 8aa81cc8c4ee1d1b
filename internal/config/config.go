// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains runtime configuration for the looter service.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// UserAgent identifies us to zKillboard and ESI.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// ZKillBaseURL and ESIBaseURL point at the upstreams; overridable
	// for tests and mirrors.
	ZKillBaseURL string
	ESIBaseURL   string

	// MaxPages caps list pagination per fetch.
	MaxPages int

	// PageDelay is the pause between list pages.
	PageDelay time.Duration

	// HydrateConcurrency bounds parallel detail fetches per batch.
	HydrateConcurrency int

	// RequestTimeout applies to every upstream HTTP request.
	RequestTimeout time.Duration

	// RedisAddr selects the Redis cache backend when set; empty means
	// the in-memory backend.
	RedisAddr string

	// LogLevel and LogPretty configure the logger.
	LogLevel  string
	LogPretty bool
}

// Load reads configuration from environment variables, applying defaults
// that let the service run out of the box.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":3000"),
		UserAgent:    getEnv("USER_AGENT", "looter/1.0 (admin@example.com)"),
		ZKillBaseURL: getEnv("ZKILL_BASE_URL", "https://zkillboard.com"),
		ESIBaseURL:   getEnv("ESI_BASE_URL", "https://esi.evetech.net"),
		RedisAddr:    strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogPretty:    getEnv("LOG_PRETTY", "false") == "true",
	}

	var err error
	if cfg.MaxPages, err = getEnvInt("MAX_PAGES", 10); err != nil {
		return Config{}, err
	}
	if cfg.HydrateConcurrency, err = getEnvInt("HYDRATE_CONCURRENCY", 8); err != nil {
		return Config{}, err
	}

	delayMS, err := getEnvInt("PAGE_DELAY_MS", 200)
	if err != nil {
		return Config{}, err
	}
	cfg.PageDelay = time.Duration(delayMS) * time.Millisecond

	timeoutS, err := getEnvInt("REQUEST_TIMEOUT_S", 15)
	if err != nil {
		return Config{}, err
	}
	cfg.RequestTimeout = time.Duration(timeoutS) * time.Second

	if cfg.MaxPages <= 0 {
		return Config{}, fmt.Errorf("MAX_PAGES must be positive (got %d)", cfg.MaxPages)
	}
	if cfg.HydrateConcurrency <= 0 {
		return Config{}, fmt.Errorf("HYDRATE_CONCURRENCY must be positive (got %d)", cfg.HydrateConcurrency)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}
