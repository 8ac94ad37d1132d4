package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how explanations are printed.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config holds all configuration for gpx
type Config struct {
	// MaxSteps caps the number of steps of one explanation. 0 means no cap.
	MaxSteps int `yaml:"max_steps" env:"GPX_MAX_STEPS"`

	// Prune drops steps marked prunable before printing
	Prune bool `yaml:"prune" env:"GPX_PRUNE"`

	// Output format for the explain command
	Output OutputFormat `yaml:"output" env:"GPX_OUTPUT"`

	// Explanation cache
	CacheEnabled bool   `yaml:"cache_enabled" env:"GPX_CACHE_ENABLED"`
	CachePath    string `yaml:"cache_path" env:"GPX_CACHE_PATH"`
	CacheSize    int    `yaml:"cache_size" env:"GPX_CACHE_SIZE"`

	// Workers bounds how many fixtures are explained at once
	Workers int `yaml:"workers" env:"GPX_WORKERS"`

	// Logging
	Verbose bool `yaml:"verbose" env:"GPX_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxSteps:     256,
		Prune:        false,
		Output:       OutputText,
		CacheEnabled: true,
		CachePath:    defaultCachePath(),
		CacheSize:    1024,
		Workers:      4,
		Verbose:      false,
	}
}

// defaultCachePath returns ~/.gpx/cache/notes.msgpack
func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".gpx", "cache", "notes.msgpack")
	}
	return filepath.Join(home, ".gpx", "cache", "notes.msgpack")
}

// GlobalConfigFilePath returns the global config file path (~/.gpx/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gpx/config.yaml"
	}
	return filepath.Join(home, ".gpx", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.gpx/config.yaml)
func ProjectConfigFilePath() string {
	return ".gpx/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.gpx/config.yaml)
// 3. Global config (~/.gpx/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigFilePath(), ProjectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GPX_MAX_STEPS"); v != "" {
		if i, ok := parseInt(v); ok && i >= 0 {
			cfg.MaxSteps = i
		}
	}
	if v := os.Getenv("GPX_PRUNE"); v != "" {
		cfg.Prune = parseBool(v)
	}
	if v := os.Getenv("GPX_OUTPUT"); v != "" {
		cfg.Output = OutputFormat(v)
	}
	if v := os.Getenv("GPX_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = parseBool(v)
	}
	if v := os.Getenv("GPX_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("GPX_CACHE_SIZE"); v != "" {
		if i, ok := parseInt(v); ok && i > 0 {
			cfg.CacheSize = i
		}
	}
	if v := os.Getenv("GPX_WORKERS"); v != "" {
		if i, ok := parseInt(v); ok && i > 0 {
			cfg.Workers = i
		}
	}
	if v := os.Getenv("GPX_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", c.Output)
	}

	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	if c.CacheEnabled {
		if c.CachePath == "" {
			return fmt.Errorf("cache_path is required when cache is enabled")
		}
		if c.CacheSize <= 0 {
			return fmt.Errorf("cache_size must be positive when cache is enabled")
		}
	}

	return nil
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}

// parseInt attempts to parse a string as int
func parseInt(s string) (int, bool) {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0, false
	}
	return i, true
}
