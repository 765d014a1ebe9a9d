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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://furniture-q3nb.onrender.com", cfg.API.FallbackOrigin)
	assert.Equal(t, 15*time.Second, cfg.AttemptTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.BackoffBase())
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 5, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxSizeBytes)
	assert.Equal(t, "image/*", cfg.Upload.AcceptPattern)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
api:
  base_origin: http://localhost:5000
  admin_token: secret
http:
  timeout_seconds: 5
  max_retries: 2
upload:
  max_files: 3
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.API.BaseOrigin)
	assert.Equal(t, "secret", cfg.API.AdminToken)
	assert.Equal(t, 5*time.Second, cfg.AttemptTimeout())
	assert.Equal(t, 3, cfg.Upload.MaxFiles)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		API:  APIConfig{BaseOrigin: "http://localhost:5000"},
		HTTP: HTTPConfig{TimeoutSeconds: 15, MaxRetries: 3},
	}
	require.NoError(t, base.Validate())

	noOrigin := base
	noOrigin.API = APIConfig{}
	assert.Error(t, noOrigin.Validate())

	badTimeout := base
	badTimeout.HTTP.TimeoutSeconds = 0
	assert.Error(t, badTimeout.Validate())

	badRetries := base
	badRetries.HTTP.MaxRetries = 0
	assert.Error(t, badRetries.Validate())

	badFiles := base
	badFiles.Upload.MaxFiles = -1
	assert.Error(t, badFiles.Validate())
}
