//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"show", "dates", "export", "tui"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "plant-dashboard", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestShowCommand_Flags(t *testing.T) {
	flag := showCmd.Flags().Lookup("feed")
	require.NotNil(t, flag)
	assert.Equal(t, "all", flag.DefValue)

	flag = showCmd.Flags().Lookup("date")
	require.NotNil(t, flag)
	assert.Equal(t, "latest", flag.DefValue)

	assert.NotNil(t, showCmd.Flags().Lookup("json"))
}

func TestDatesCommand_Flags(t *testing.T) {
	flag := datesCmd.Flags().Lookup("feed")
	require.NotNil(t, flag)
	assert.Equal(t, "main", flag.DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	flag := exportCmd.Flags().Lookup("out")
	require.NotNil(t, flag)
	assert.Equal(t, "dashboard.xlsx", flag.DefValue)
}

func TestTUICommand_Flags(t *testing.T) {
	flag := tuiCmd.Flags().Lookup("log-file")
	require.NotNil(t, flag)
	assert.Equal(t, "plant-dashboard.log", flag.DefValue)

	assert.True(t, isTerminalOutput("stderr"))
	assert.True(t, isTerminalOutput(""))
	assert.False(t, isTerminalOutput("/var/log/dashboard.log"))
}

func TestRootCmd_PersistentPreRunE_WithValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
feeds:
  main:
    url: https://example.com/main.csv
fetch:
  max_retries: 2
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "https://example.com/main.csv", cfg.Feeds.Main.URL)
	assert.Equal(t, 2, cfg.Fetch.MaxRetries)
}

func TestRootCmd_PersistentPreRunE_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "timestamp", cfg.Feeds.Metrics.CacheBustParam)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestRootCmd_PersistentPreRunE_InvalidURL(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
feeds:
  metrics:
    url: ftp://example.com/metrics.csv
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("log:\n  level: loud\n"), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}
