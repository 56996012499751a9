package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	assert.Equal(t, "/custom/config/arrbot/config.toml", DefaultPath())
}

func TestDiscover_EnvVar(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[matrix]"), 0644))
	t.Setenv("ARRBOT_CONFIG", cfgPath)

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)
}

func TestDefaultPath_Home(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/bot")

	assert.Equal(t, "/home/bot/.config/arrbot/config.toml", DefaultPath())
}

func TestDiscover_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[matrix]"), 0644))
	t.Chdir(dir)
	t.Setenv("ARRBOT_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, "config.toml", path)
}

func TestDiscover_EnvVarNotFound(t *testing.T) {
	t.Setenv("ARRBOT_CONFIG", "/nonexistent/config.toml")

	_, err := Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARRBOT_CONFIG")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	require.NoError(t, WriteDefault(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[matrix]")

	err = WriteDefault(path)
	require.Error(t, err, "must not overwrite an existing config")
}

func TestDefaultConfig_Loads(t *testing.T) {
	t.Setenv("ARRBOT_MATRIX_PASSWORD", "pw")
	t.Setenv("SONARR_API_KEY", "s")
	t.Setenv("RADARR_API_KEY", "r")
	t.Setenv("TVDB_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pw", cfg.Matrix.Password)
	assert.True(t, cfg.Sonarr.Configured())
	assert.Empty(t, cfg.TVDB.APIKey)
}
