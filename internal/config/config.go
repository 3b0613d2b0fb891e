// Package config loads and persists the per-workspace scalpel configuration
// at .scalpel/config.json. A missing file means defaults; a malformed file
// is an error.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Version is the current config schema version.
const Version = 1

// Config is the complete scalpel configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Context ContextConfig `json:"context" mapstructure:"context"`
	Guard   GuardConfig   `json:"guard" mapstructure:"guard"`
	Token   TokenConfig   `json:"token" mapstructure:"token"`
	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ContextConfig sets the default padding of context windows.
type ContextConfig struct {
	Before int `json:"before" mapstructure:"before"`
	After  int `json:"after" mapstructure:"after"`
}

// GuardConfig controls the mutation guard policy.
type GuardConfig struct {
	// AllowForce permits --force to bypass bypassable guards. Re-parse
	// validation is never bypassable regardless of this setting.
	AllowForce bool `json:"allowForce" mapstructure:"allowForce"`
}

// TokenConfig controls continuation tokens.
type TokenConfig struct {
	TTLHours int `json:"ttlHours" mapstructure:"ttlHours"`
}

// ScanConfig controls workspace scanning.
type ScanConfig struct {
	Workers int `json:"workers" mapstructure:"workers"` // 0 means NumCPU
}

// CacheConfig controls the extraction cache.
type CacheConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Context: ContextConfig{Before: 512, After: 512},
		Guard:   GuardConfig{AllowForce: true},
		Token:   TokenConfig{TTLHours: 24},
		Scan:    ScanConfig{Workers: 0},
		Cache:   CacheConfig{Enabled: true},
		Logging: LoggingConfig{Level: "info", Format: "human"},
	}
}

// LoadConfig reads .scalpel/config.json under root, falling back to defaults
// when the file is absent.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", Version)
	v.SetDefault("context.before", 512)
	v.SetDefault("context.after", 512)
	v.SetDefault("guard.allowForce", true)
	v.SetDefault("token.ttlHours", 24)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "human")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".scalpel"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .scalpel/config.json.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".scalpel")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	if c.Version != Version {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Context.Before < 0 || c.Context.After < 0 {
		return &ConfigError{Field: "context", Message: "padding cannot be negative"}
	}
	if c.Token.TTLHours <= 0 {
		return &ConfigError{Field: "token.ttlHours", Message: "ttl must be positive"}
	}
	switch c.Logging.Format {
	case "json", "human":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be json or human"}
	}
	return nil
}

// ConfigError describes one invalid field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
