package commands

import (
	"os"
	"path/filepath"

	"github.com/clerkd/clerk/internal/clerk"
	"github.com/clerkd/clerk/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	VaultRoot  string
	DryRun     bool

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Service is the wired component graph for the configured vault
	Service *clerk.Service
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "clerk", "config.yaml")
}

// DefaultVaultRoot returns the default vault directory under the user's home.
func DefaultVaultRoot() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "ClerkVault")
}
