// Package config loads the rulesd configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Path of the configuration file unless EnvPath overrides it.
const (
	DefaultPath = "config/rulesd.yaml"
	EnvPath     = "RULESD_CONFIG"
)

// Rulesd holds all configuration for the rules daemon.
type Rulesd struct {
	LogLevel string `yaml:"log_level"`

	// Specification: an embedded rule set, or files on disk when
	// SpecPaths is set. Patches apply on top, in order.
	RuleSet    string   `yaml:"rule_set"`
	SpecPaths  []string `yaml:"spec_paths"`
	PatchPaths []string `yaml:"patch_paths"`

	Registry RegistryConfig `yaml:"registry"`

	// Database
	PersistenceEnabled bool           `yaml:"persistence_enabled"`
	Database           DatabaseConfig `yaml:"database"`
}

// RegistryConfig tunes the object registry sweep.
type RegistryConfig struct {
	SweepThreshold int `yaml:"sweep_threshold"` // removals between sweeps
	SweepBatch     int `yaml:"sweep_batch"`     // entries checked per lock hold
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultRulesd returns Rulesd config with sensible defaults.
func DefaultRulesd() Rulesd {
	return Rulesd{
		LogLevel: "info",
		RuleSet:  "classic",
		Registry: RegistryConfig{
			SweepThreshold: 64,
			SweepBatch:     256,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "freecol",
			Password: "freecol",
			DBName:   "freecol",
			SSLMode:  "disable",
		},
	}
}

// Path returns the configuration path, honouring EnvPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadRulesd loads rulesd config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadRulesd(path string) (Rulesd, error) {
	cfg := DefaultRulesd()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Rulesd) Validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel))
	}
	if c.RuleSet == "" && len(c.SpecPaths) == 0 {
		errs = append(errs, errors.New("either rule_set or spec_paths is required"))
	}
	if c.Registry.SweepThreshold < 0 {
		errs = append(errs, fmt.Errorf("registry.sweep_threshold %d is negative", c.Registry.SweepThreshold))
	}
	if c.Registry.SweepBatch < 0 {
		errs = append(errs, fmt.Errorf("registry.sweep_batch %d is negative", c.Registry.SweepBatch))
	}
	return errors.Join(errs...)
}
