package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Size{Width: 630, Height: 630}, cfg.FlagSize)
	assert.Equal(t, Point{X: 251, Y: 304}, cfg.FlagPosition)
	assert.Equal(t, "local", cfg.Store)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultFlagsDir, cfg.FlagsDir)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "/nonexistent/flagpic.yaml")
	require.Error(t, err)

	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "/nonexistent/flagpic.yaml", ce.Path)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
flags_dir: flags
store: remote
flag_size:
  width: 300
  height: 200
remote:
  aspect_ratio: 4x3
concurrency: 8
`)

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "flags"), cfg.FlagsDir)
	assert.Equal(t, "remote", cfg.Store)
	assert.Equal(t, Size{Width: 300, Height: 200}, cfg.FlagSize)
	assert.Equal(t, "4x3", cfg.Remote.AspectRatio)
	assert.Equal(t, DefaultRemoteBaseURL, cfg.Remote.BaseURL)
	assert.Equal(t, 8, cfg.Concurrency)
	// Untouched fields keep their defaults.
	assert.Equal(t, Point{X: DefaultFlagX, Y: DefaultFlagY}, cfg.FlagPosition)
}

func TestLoadAbsolutePathsKept(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output_dir: /tmp/out\n")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"bad store", "store: ftp\n", "Store"},
		{"bad ratio", "remote:\n  aspect_ratio: 16x9\n", "AspectRatio"},
		{"zero width", "flag_size:\n  width: 0\n  height: 10\n", "Width"},
		{"too many workers", "concurrency: 100\n", "Concurrency"},
		{"bad url", "remote:\n  base_url: not a url\n", "BaseURL"},
		{"bad log level", "log:\n  level: loud\n", "Level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, tc.content)

			_, err := Load(dir, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "store: [local\n")

	_, err := Load(dir, "")
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("/c", "flags"), FlagCacheDir("/c"))

	dir := t.TempDir()
	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(filepath.Join(dir, "missing")))
}
