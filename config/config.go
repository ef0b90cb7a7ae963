package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"promptkit/adapters/redis"
	"promptkit/adapters/sqlx"
	"promptkit/core"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "PROMPTKIT"

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete configuration of a host embedding the engine.
type Config struct {
	// Environment and profile settings
	Environment Environment `json:"environment" yaml:"environment" env:"ENV"`
	Profile     string      `json:"profile" yaml:"profile" env:"PROFILE"`

	// Store selects and tunes the Default store backend
	Store StoreConfig `json:"store" yaml:"store" env:"STORE"`

	// Policy holds the decision thresholds
	Policy core.Policy `json:"policy" yaml:"policy" env:"POLICY"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" yaml:"logging" env:"LOG"`

	// Metrics configuration
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" env:"METRICS"`
}

// StoreConfig holds the Default store descriptor and per-backend tuning.
// Connection targets always come from Descriptor; Redis and SQL only carry
// pool and timeout settings. Zero SQL pool settings use the defaults of the
// driver the descriptor resolves to.
type StoreConfig struct {
	Descriptor string        `json:"descriptor" yaml:"descriptor" env:"DESCRIPTOR"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout" env:"TIMEOUT"`
	Redis      redis.Config  `json:"redis,omitempty" yaml:"redis,omitempty" env:"REDIS"`
	SQL        sqlx.Config   `json:"sql,omitempty" yaml:"sql,omitempty" env:"SQL"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string            `json:"level" yaml:"level" env:"LEVEL"`
	Format     string            `json:"format" yaml:"format" env:"FORMAT"`
	Output     string            `json:"output" yaml:"output" env:"OUTPUT"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty" env:"ATTRIBUTES"`
}

// MetricsConfig holds metrics configuration. Metrics are written in the
// Prometheus text format to TextfilePath, for collection by a node exporter.
type MetricsConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled" env:"ENABLED"`
	TextfilePath string `json:"textfile_path" yaml:"textfile_path" env:"TEXTFILE_PATH"`
}

// Override adjusts a loaded config after environment variables and before
// validation, e.g. to apply command-line flags.
type Override func(*Config)

// Load loads configuration from environment variables, applies overrides and
// validates the result.
func Load(overrides ...Override) (*Config, error) {
	cfg := DefaultConfig()

	// Load from environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	for _, o := range overrides {
		o(cfg)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	switch strings.ToLower(filepath.Ext(cleanPath)) {
	case ".json", ".yaml", ".yml":
	default:
		return errors.New("config file must have .json, .yaml or .yml extension")
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a JSON or YAML file, then applies
// environment variables and overrides, in that order.
func LoadFromFile(path string, overrides ...Override) (*Config, error) {
	// Validate the path for security
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - Path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Environment variables override file values
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	for _, o := range overrides {
		o(cfg)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		Store: StoreConfig{
			Descriptor: "file:./data/promptkit.json",
			Timeout:    3 * time.Second,
			Redis:      redis.DefaultConfig(),
		},
		Policy: core.DefaultPolicy(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// LoadProfile returns the defaults for a named deployment profile.
func LoadProfile(name string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Profile = name
	switch name {
	case "development":
		cfg.Environment = EnvDevelopment
		cfg.Logging.Level = "debug"
	case "testing":
		cfg.Environment = EnvTesting
		cfg.Store.Descriptor = "memory:"
		cfg.Logging.Level = "warn"
	case "staging":
		cfg.Environment = EnvStaging
		cfg.Logging.Format = "json"
	case "production":
		cfg.Environment = EnvProduction
		cfg.Logging.Format = "json"
		cfg.Logging.Level = "warn"
	default:
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	return cfg, nil
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	// Validate environment
	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("store config: %v", err))
	}

	if err := validatePolicy(c.Policy); err != nil {
		errs = append(errs, fmt.Sprintf("policy config: %v", err))
	}

	// Validate logging config
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	// Validate metrics config
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("metrics config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	// Create a copy for redaction
	cfg := *c

	// Redact sensitive information
	if cfg.Store.SQL.DSN != "" {
		cfg.Store.SQL.DSN = "[REDACTED]"
	}
	if cfg.Store.Redis.Password != "" {
		cfg.Store.Redis.Password = "[REDACTED]"
	}
	if strings.Contains(cfg.Store.Descriptor, "@") {
		cfg.Store.Descriptor = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
