package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ifdif.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verbose: true\npermmap: /etc/permmap\nconcurrency: 8\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "/etc/permmap", cfg.Permmap)
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ifdif.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verbose: [this is not a bool\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
