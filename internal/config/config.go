package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envHost            = "HOST"
	envPort            = "PORT"
	envDebug           = "DEBUG"
	envLogLevel        = "LOG_LEVEL"
	envRateLimit       = "RATE_LIMIT"
	envRateBurst       = "RATE_BURST"
	envShutdownTimeout = "SHUTDOWN_TIMEOUT"
)

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 5000
	defaultLogLevel        = "info"
	defaultRateBurst       = 10
	defaultShutdownTimeout = 5 * time.Second
)

// Config describes info-service configuration loaded from the environment.
type Config struct {
	Host            string
	Port            int
	Debug           bool
	LogLevel        string
	RateLimit       float64
	RateBurst       int
	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// EffectiveLogLevel returns debug when DEBUG is set, otherwise LOG_LEVEL.
func (c Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// Load reads configuration from environment variables and a local .env file if present.
// Existing environment variables take precedence over values in .env.
func Load() (Config, error) {
	if err := loadDotEnvIfPresent(".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Host:            defaultHost,
		Port:            defaultPort,
		LogLevel:        defaultLogLevel,
		RateBurst:       defaultRateBurst,
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if value, ok := lookupTrimmed(envHost); ok && value != "" {
		cfg.Host = value
	}

	if value, ok := lookupTrimmed(envPort); ok {
		port, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envPort, err)
		}
		if port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("%s must be between 1 and 65535", envPort)
		}
		cfg.Port = port
	}

	if value, ok := lookupTrimmed(envDebug); ok && value != "" {
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envDebug, err)
		}
		cfg.Debug = debug
	}

	if value, ok := lookupTrimmed(envLogLevel); ok && value != "" {
		cfg.LogLevel = value
	}

	if value, ok := lookupTrimmed(envRateLimit); ok {
		limit, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envRateLimit, err)
		}
		if limit < 0 {
			return Config{}, fmt.Errorf("%s cannot be negative", envRateLimit)
		}
		cfg.RateLimit = limit
	}

	if value, ok := lookupTrimmed(envRateBurst); ok {
		burst, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envRateBurst, err)
		}
		if burst <= 0 {
			return Config{}, fmt.Errorf("%s must be greater than zero", envRateBurst)
		}
		cfg.RateBurst = burst
	}

	if value, ok := lookupTrimmed(envShutdownTimeout); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envShutdownTimeout, err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("%s must be greater than zero", envShutdownTimeout)
		}
		cfg.ShutdownTimeout = timeout
	}

	return cfg, nil
}

func lookupTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func loadDotEnvIfPresent(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return nil
	}

	return err
}
