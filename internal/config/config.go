package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Data locations. The photo directories default to the conventional
	// subdirectories of DataDir when unset.
	DataDir          string
	AccidentPhotoDir string
	RockfallPhotoDir string

	// RefreshInterval is how often the snapshot store re-checks the
	// source fingerprint. Zero disables the periodic refresh.
	RefreshInterval time.Duration

	// Redis snapshot cache configuration.
	RedisAddr   string // empty disables the cache
	CachePrefix string
	CacheTTL    time.Duration

	// Rate limiting for the public API.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := durationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	if shutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}

	refreshInterval, err := durationOrDefault("REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	if refreshInterval < 0 {
		return nil, errors.New("REFRESH_INTERVAL must not be negative")
	}

	cacheTTL, err := durationOrDefault("CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	if cacheTTL < 0 {
		return nil, errors.New("CACHE_TTL must not be negative")
	}

	rps, err := floatOrDefault("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, err
	}
	if rps <= 0 {
		return nil, errors.New("RATE_LIMIT_RPS must be positive")
	}

	burst, err := intOrDefault("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}
	if burst < 1 {
		return nil, errors.New("RATE_LIMIT_BURST must be at least 1")
	}

	dataDir := envOrDefault("DATA_DIR", "./data")
	if dataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir:          dataDir,
		AccidentPhotoDir: envOrDefault("ACCIDENT_PHOTO_DIR", filepath.Join(dataDir, "acc_pic")),
		RockfallPhotoDir: envOrDefault("ROCKFALL_PHOTO_DIR", filepath.Join(dataDir, "rockfall")),

		RefreshInterval: refreshInterval,

		RedisAddr:   os.Getenv("REDIS_ADDR"),
		CachePrefix: envOrDefault("CACHE_PREFIX", "ulleung-dash"),
		CacheTTL:    cacheTTL,

		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationOrDefault(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func intOrDefault(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func floatOrDefault(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}
