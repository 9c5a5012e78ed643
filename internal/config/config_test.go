package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventmemo", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "@every 1m", cfg.ScanSchedule)
	assert.Equal(t, 10*1024*1024, cfg.ImportMaxBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "events.db"), cfg.DataPath)

	// The defaults were written out with restrictive permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "data_path: /tmp/custom.db\nscan_schedule: '@every 30s'\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DataPath)
	assert.Equal(t, "@every 30s", cfg.ScanSchedule)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset fields keep their defaults.
	assert.Equal(t, 10*1024*1024, cfg.ImportMaxBytes)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n :nope"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	cfg := Default()
	cfg.Passphrase = "open sesame"
	cfg.StoreMaxBytes = 1024
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "open sesame", loaded.Passphrase)
	assert.Equal(t, 1024, loaded.StoreMaxBytes)
}
