package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yasserk123/HealthVision-Projet/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "hv_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "08:00", cfg.Reminder.At)
	assert.Equal(t, 8081, cfg.Worker.Port)
	assert.False(t, cfg.DatabaseEnabled())
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.SMTPEnabled())
}

func TestLoadFailsWithoutBackendSettings(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	_, err := config.Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadRejectsInvalidBackendURL(t *testing.T) {
	t.Setenv("SUPABASE_URL", "not a url")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	_, err := config.Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yml := `
server:
  port: 9090
session:
  ttl: 2h
cors:
  allowed_origins:
    - https://healthvision.example
database:
  dsn: postgres://localhost/hv
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))

	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("SUPABASE_TIMEOUT", "3s")
	t.Setenv("HV_SERVER_PORT", "7070")
	t.Setenv("HV_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"https://healthvision.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.True(t, cfg.DatabaseEnabled())
	assert.True(t, cfg.RedisEnabled())
}
