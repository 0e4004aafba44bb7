package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("vault_root", c.VaultRoot, notEmpty, isDirectoryOrNotExist),
		criterio.Run("stability.poll_interval", c.Stability.PollInterval, positiveDuration),
		criterio.Run("stability.max_wait", c.Stability.MaxWait, positiveDuration),
		c.validateWaitOrdering(),
		criterio.Run("downstream.process_timeout", c.Downstream.ProcessTimeout, positiveDuration),
		criterio.Run("downstream.refresh_timeout", c.Downstream.RefreshTimeout, positiveDuration),
		c.validateIgnoreGlobs(),
	)
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func positiveDuration(d Duration) error {
	if d.Std() <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func (c *Config) validateWaitOrdering() error {
	if c.Stability.MaxWait < c.Stability.PollInterval {
		return criterio.NewFieldErrors("stability.max_wait",
			fmt.Errorf("must be at least the poll interval"))
	}
	return nil
}

func (c *Config) validateIgnoreGlobs() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("ignore[%d]", i), fmt.Errorf("invalid glob pattern: %s", pattern))
		}
	}
	return errs.ToError()
}
