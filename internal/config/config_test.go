package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, SourceSQLite, cfg.Catalog.Source)
	assert.Equal(t, 30*time.Second, cfg.GetBackendTimeout())
	assert.Equal(t, 2*time.Hour, cfg.GetSessionIdleTTL())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "macrokitchen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
catalog:
  source: rest
backend:
  url: https://file.example
  timeout: 5s
`), 0644))

	t.Setenv("BACKEND_URL", "https://env.example")
	t.Setenv("BACKEND_API_KEY", "anon")
	t.Setenv("MACRO_KITCHEN_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "https://env.example", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.GetBackendTimeout())
	assert.Equal(t, "/data/macrokitchen.db", cfg.Database.Path, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadPortEnv(t *testing.T) {
	t.Setenv("MACRO_KITCHEN_PORT", "eighty")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalog.Source = SourceREST
	assert.Error(t, cfg.Validate(), "rest without credentials")

	cfg.Catalog.Source = "carrier-pigeon"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Session.IdleTTL = "45m"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, got.GetSessionIdleTTL())
}
