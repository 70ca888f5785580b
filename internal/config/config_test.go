package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8866", cfg.Server)
	assert.Equal(t, "http://localhost:8888", cfg.Jupyter.Server)
	assert.Equal(t, 5*time.Second, cfg.KernelIdleTimeout.Std())
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nbstage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server: https://api.calkit.io
token: file-token
jupyter:
  server: http://hub:8000
kernel_idle_timeout: 10s
redis:
  url: redis://cache:6379/0
  lock_ttl: 15m
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.calkit.io", cfg.Server)
	assert.Equal(t, "file-token", cfg.Token)
	assert.Equal(t, "http://hub:8000", cfg.Jupyter.Server)
	assert.Equal(t, 10*time.Second, cfg.KernelIdleTimeout.Std())
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
	assert.Equal(t, 15*time.Minute, cfg.Redis.LockTTL.Std())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingFileIsOptional(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8866", cfg.Server)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nbstage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: file-token\n"), 0o644))

	t.Setenv("CALKIT_TOKEN", "env-token")
	t.Setenv("CALKIT_SERVER", "https://staging.calkit.io")
	t.Setenv("NBSTAGE_KERNEL_IDLE_TIMEOUT", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "https://staging.calkit.io", cfg.Server)
	assert.Equal(t, 30*time.Second, cfg.KernelIdleTimeout.Std())
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nbstage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_NonPositiveTimeoutFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nbstage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kernel_idle_timeout: 0s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.KernelIdleTimeout.Std())
}
