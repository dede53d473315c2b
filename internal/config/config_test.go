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

	assert.Equal(t, "collabhub", cfg.App.Name)
	assert.Equal(t, 4000, cfg.App.Port)
	assert.Equal(t, "/ws", cfg.Relay.Path)
	assert.False(t, cfg.Relay.ValidateSessions)
	assert.Equal(t, 256, cfg.Relay.SendBuffer)
	assert.Equal(t, 10*time.Second, cfg.Stats.CacheTTL)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COLLABHUB_APP_PORT", "8080")
	t.Setenv("COLLABHUB_RELAY_VALIDATE_SESSIONS", "true")
	t.Setenv("COLLABHUB_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.True(t, cfg.Relay.ValidateSessions)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COLLABHUB_APP_ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}
