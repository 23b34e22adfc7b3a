package config

import (
	"fmt"
	"strconv"
	"time"
)

const (
	envYCPath            = "YC_PATH"
	envYCFolderID        = "YC_FOLDER_ID"
	envInventoryTimeout  = "YC_INVENTORY_TIMEOUT"
	envInventoryRetries  = "YC_INVENTORY_RETRIES"
	envInventoryLogLevel = "YC_INVENTORY_LOG_LEVEL"
	envInventoryRules    = "YC_INVENTORY_RULES"
)

const (
	defaultYCPath            = "yc"
	defaultInventoryTimeout  = 30 * time.Second
	defaultInventoryLogLevel = "warn"
)

// InventoryConfig describes yc-inventory configuration.
type InventoryConfig struct {
	YCPath    string
	FolderID  string
	Timeout   time.Duration
	Retries   int
	LogLevel  string
	RulesPath string
}

// DefaultInventory returns the configuration used when nothing is set.
func DefaultInventory() InventoryConfig {
	return InventoryConfig{
		YCPath:   defaultYCPath,
		Timeout:  defaultInventoryTimeout,
		LogLevel: defaultInventoryLogLevel,
	}
}

// LoadInventory reads yc-inventory configuration from the environment and .env.
func LoadInventory() (InventoryConfig, error) {
	if err := loadDotEnvIfPresent(".env"); err != nil {
		return InventoryConfig{}, err
	}

	cfg := DefaultInventory()

	if value, ok := lookupTrimmed(envYCPath); ok && value != "" {
		cfg.YCPath = value
	}

	if value, ok := lookupTrimmed(envYCFolderID); ok {
		cfg.FolderID = value
	}

	if value, ok := lookupTrimmed(envInventoryTimeout); ok {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return InventoryConfig{}, fmt.Errorf("invalid %s: %w", envInventoryTimeout, err)
		}
		if timeout <= 0 {
			return InventoryConfig{}, fmt.Errorf("%s must be greater than zero", envInventoryTimeout)
		}
		cfg.Timeout = timeout
	}

	if value, ok := lookupTrimmed(envInventoryRetries); ok {
		retries, err := strconv.Atoi(value)
		if err != nil {
			return InventoryConfig{}, fmt.Errorf("invalid %s: %w", envInventoryRetries, err)
		}
		if retries < 0 {
			return InventoryConfig{}, fmt.Errorf("%s cannot be negative", envInventoryRetries)
		}
		cfg.Retries = retries
	}

	if value, ok := lookupTrimmed(envInventoryLogLevel); ok && value != "" {
		cfg.LogLevel = value
	}

	if value, ok := lookupTrimmed(envInventoryRules); ok {
		cfg.RulesPath = value
	}

	return cfg, nil
}
