package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/caarlos0/env/v6"
	"github.com/iwvelando/rental-valuation/internal/config"
	"github.com/iwvelando/rental-valuation/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server. Environment
// variables override values read from the YAML file.
type Config struct {
	Address      string               `yaml:"address" env:"RV_ADDRESS"`
	DatabasePath string               `yaml:"databasePath" env:"RV_DATABASE_PATH"`
	RedisAddress string               `yaml:"redisAddress" env:"RV_REDIS_ADDRESS"`
	CacheTTL     time.Duration        `yaml:"cacheTTL" env:"RV_CACHE_TTL"`
	MaxBodySize  string               `yaml:"maxBodySize" env:"RV_MAX_BODY_SIZE"`
	Policy       config.PolicyConfig  `yaml:"policy"`
	Logging      config.LoggingConfig `yaml:"logging"`
	// LogLevel overrides Logging.Level when set.
	LogLevel string `yaml:"-" env:"RV_LOG_LEVEL"`

	bodySizeBytes int64
}

// LoadConfig loads the server configuration from YAML and then applies
// environment overrides. If the file does not exist, defaults are used.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:       constants.DefaultServerAddress,
		DatabasePath:  constants.DefaultDatabasePath,
		CacheTTL:      constants.DefaultCacheTTLSeconds * time.Second,
		MaxBodySize:   fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		bodySizeBytes: constants.DefaultMaxBodySizeBytes,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	if c.LogLevel != "" {
		c.Logging.Level = c.LogLevel
	}

	bytes, err := ParseSize(c.MaxBodySize)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = bytes
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	idx := len(trimmed)
	for idx > 0 && !unicode.IsDigit(rune(trimmed[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(strings.TrimSpace(trimmed[:idx]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch strings.TrimSpace(trimmed[idx:]) {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit in %q", value)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
