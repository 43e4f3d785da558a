package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.EnvFileLoaded)
	assert.Equal(t, "pickleball_ratings", cfg.Database.Schema)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Session.AutoReturnDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.Session.NameBlurGrace)
	assert.Equal(t, 5, cfg.Session.MaxNameSuggestions)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Zero(t, cfg.Jobs.RefreshInterval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BACKEND_PORT", "9100")
	t.Setenv("DB_SCHEMA", "public")
	t.Setenv("SESSION_AUTO_RETURN_DELAY", "1500ms")
	t.Setenv("SESSION_IDLE_TTL", "10m")
	t.Setenv("SESSION_SWEEP_INTERVAL", "15s")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("LOG_DEVELOPMENT", "true")
	t.Setenv("WORKER_COUNT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "public", cfg.Database.Schema)
	assert.Equal(t, 1500*time.Millisecond, cfg.Session.AutoReturnDelay)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, 15*time.Second, cfg.Session.SweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.Jobs.RefreshInterval)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, 4, cfg.Worker.Count, "unparsable values fall back to the default")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SESSION_MAX_NAME_SUGGESTIONS", "0"},
		{"SESSION_IDLE_TTL", "0s"},
		{"SESSION_SWEEP_INTERVAL", "-1m"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", DBName: "ratings", SSLMode: "require",
	}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=ratings sslmode=require", cfg.GetDSN())

	cfg.Database.URL = "postgres://elsewhere"
	assert.Equal(t, "postgres://elsewhere", cfg.GetDSN())
}
