package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", "/var/cache/test")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"md5"}, cfg.Checksums)
	assert.Equal(t, 3.0, cfg.GPSRadius)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "/var/cache/test/photoidx/sums.db", cfg.Cache.Path)
	assert.Equal(t, ":8080", cfg.Serve.Listen)
}

func TestUserFileOverrides(t *testing.T) {
	path := writeConfig(t, `
checksums: [sha256, mmh3]
gpsradius: 0.5
log:
  level: debug
cache:
  enabled: true
  path: /tmp/sums.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"sha256", "mmh3"}, cfg.Checksums)
	assert.Equal(t, 0.5, cfg.GPSRadius)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/sums.db", cfg.Cache.Path)
}

func TestExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestInvalidRadius(t *testing.T) {
	_, err := Load(writeConfig(t, "gpsradius: -1\n"))
	assert.Error(t, err)
}
