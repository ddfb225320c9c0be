package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	isolateXDG(t)
	v := viper.New()
	require.NoError(t, Init(v, ""))

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ".gitlet", c.Dir)
	assert.Equal(t, 256, c.CacheSize)
	assert.True(t, c.Compression.Enabled)
	assert.Equal(t, 2, c.Compression.Level)
	assert.Equal(t, 4, c.Sync.Concurrency)
	assert.Len(t, c.RepoOptions(), 4)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dir: .vcs
cache_size: 64
compression:
  enabled: false
  level: 3
sync:
  concurrency: 2
`), 0644))
	t.Setenv("GITLET_SYNC_CONCURRENCY", "9")

	v := viper.New()
	require.NoError(t, Init(v, path))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ".vcs", c.Dir)
	assert.Equal(t, 64, c.CacheSize)
	assert.False(t, c.Compression.Enabled)
	assert.Equal(t, 3, c.Compression.Level)
	assert.Equal(t, 9, c.Sync.Concurrency, "environment wins over the file")
}

func TestInit_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsBadLevel(t *testing.T) {
	isolateXDG(t)
	t.Setenv("GITLET_COMPRESSION_LEVEL", "7")
	v := viper.New()
	require.NoError(t, Init(v, ""))

	_, err := Load(v)
	assert.Error(t, err)
}

// isolateXDG points the config search path at an empty directory.
func isolateXDG(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}
