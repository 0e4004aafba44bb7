package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load("", root)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.VaultRoot)
	assert.Equal(t, 500*time.Millisecond, cfg.Stability.PollInterval.Std())
	assert.Equal(t, 30*time.Second, cfg.Stability.MaxWait.Std())
	assert.Equal(t, 2*time.Minute, cfg.Downstream.ProcessTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.Downstream.RefreshTimeout.Std())
	assert.Empty(t, cfg.Ignore)
	assert.False(t, cfg.DryRun)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clerk.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
vault_root: `+dir+`
ignore:
  - "*.bak"
  - "draft_*"
stability:
  poll_interval: 250ms
  max_wait: 10s
downstream:
  process_timeout: 1m
`), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.VaultRoot)
	assert.Equal(t, []string{"*.bak", "draft_*"}, cfg.Ignore)
	assert.Equal(t, 250*time.Millisecond, cfg.Stability.PollInterval.Std())
	assert.Equal(t, 10*time.Second, cfg.Stability.MaxWait.Std())
	assert.Equal(t, time.Minute, cfg.Downstream.ProcessTimeout.Std())
	// Unset values keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Downstream.RefreshTimeout.Std())
}

func TestLoadFlagOverridesFileRoot(t *testing.T) {
	dir := t.TempDir()
	flagRoot := t.TempDir()
	path := filepath.Join(dir, "clerk.yml")
	require.NoError(t, os.WriteFile(path, []byte("vault_root: "+dir+"\n"), 0o644))

	cfg, err := Load(path, flagRoot)
	require.NoError(t, err)
	assert.Equal(t, flagRoot, cfg.VaultRoot)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Load(filepath.Join(root, "nope.yml"), root)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.VaultRoot)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty vault root",
			mutate:  func(c *Config) { c.VaultRoot = "" },
			wantErr: "vault_root",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Stability.PollInterval = 0 },
			wantErr: "poll_interval",
		},
		{
			name: "max wait below poll interval",
			mutate: func(c *Config) {
				c.Stability.PollInterval = Duration(time.Second)
				c.Stability.MaxWait = Duration(100 * time.Millisecond)
			},
			wantErr: "max_wait",
		},
		{
			name:    "bad ignore glob",
			mutate:  func(c *Config) { c.Ignore = []string{"[unclosed"} },
			wantErr: "ignore[0]",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.VaultRoot = t.TempDir()
			tc.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateVaultRootIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	cfg := DefaultConfig()
	cfg.VaultRoot = file
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestDurationRoundTrip(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	out, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", out)
}
