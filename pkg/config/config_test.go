package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 50, cfg.Conversion.ClusterSizeThreshold)
	assert.True(t, cfg.Conversion.EnclosureFill)
	assert.False(t, cfg.Output.Verbose)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte("conversion:\n  clusterSizeThreshold: 10\n  enclosureFill: false\n")
	require.NoError(t, os.WriteFile(path, contents, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Conversion.ClusterSizeThreshold)
	assert.False(t, cfg.Conversion.EnclosureFill)
	// Untouched section keeps its default.
	assert.False(t, cfg.Output.Verbose)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("conversion: ["), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestSaveAndReloadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Conversion.ClusterSizeThreshold = 25
	cfg.Output.Verbose = true

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}
