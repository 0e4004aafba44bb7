// Package config handles configuration loading and validation for clerk.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Stability tunes the write-completion detection for new intake files.
type Stability struct {
	// PollInterval is how often a new file's size is sampled.
	PollInterval Duration `yaml:"poll_interval"`
	// MaxWait bounds the total stabilization wait. Hitting it is a warning,
	// not a failure.
	MaxWait Duration `yaml:"max_wait"`
}

// Downstream bounds the synchronous calls the watcher makes after landing a
// file.
type Downstream struct {
	ProcessTimeout Duration `yaml:"process_timeout"`
	RefreshTimeout Duration `yaml:"refresh_timeout"`
}

// Config holds the application configuration.
type Config struct {
	// VaultRoot is the directory holding all stage folders.
	VaultRoot string `yaml:"vault_root"`
	// Ignore lists extra glob patterns for intake files to skip.
	Ignore     []string   `yaml:"ignore"`
	Stability  Stability  `yaml:"stability"`
	Downstream Downstream `yaml:"downstream"`

	// DryRun is set by the caller from the flag or environment, never from
	// the config file.
	DryRun bool `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Stability: Stability{
			PollInterval: Duration(500 * time.Millisecond),
			MaxWait:      Duration(30 * time.Second),
		},
		Downstream: Downstream{
			ProcessTimeout: Duration(2 * time.Minute),
			RefreshTimeout: Duration(30 * time.Second),
		},
	}
}

// Load reads configuration from the given path and sets the vault root.
// If configPath is empty or doesn't exist, returns defaults with the provided
// vaultRoot. A vault_root in the file is overridden by a non-empty vaultRoot
// argument so the CLI flag always wins.
func Load(configPath, vaultRoot string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if vaultRoot != "" {
		cfg.VaultRoot = vaultRoot
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Stability.PollInterval == 0 {
		c.Stability.PollInterval = defaults.Stability.PollInterval
	}
	if c.Stability.MaxWait == 0 {
		c.Stability.MaxWait = defaults.Stability.MaxWait
	}
	if c.Downstream.ProcessTimeout == 0 {
		c.Downstream.ProcessTimeout = defaults.Downstream.ProcessTimeout
	}
	if c.Downstream.RefreshTimeout == 0 {
		c.Downstream.RefreshTimeout = defaults.Downstream.RefreshTimeout
	}
}
