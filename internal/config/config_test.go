package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()

	t.Setenv("ENV", EnvLocal)
	t.Setenv("DB_SERVER", "localhost:3306")
	t.Setenv("DB_NAME", "firetrack")
	t.Setenv("DB_USER", "firetrack")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("REDIS_TYPE", "redis")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Activation.CodeTTL)
	assert.Equal(t, 5, cfg.Activation.MaxAttempts)
	assert.Equal(t, "@every 10m", cfg.Activation.PurgeCron)
	assert.Equal(t, "UTC", cfg.Database.TimeZone)
	assert.Equal(t, "activation.html", cfg.Email.Templates.Activation)
	assert.False(t, cfg.Email.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ACTIVATION_CODE_TTL", "15m")
	t.Setenv("ACTIVATION_MAX_ATTEMPTS", "3")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Activation.CodeTTL)
	assert.Equal(t, 3, cfg.Activation.MaxAttempts)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HttpServer.AllowedOrigins)
}

func TestLoadStore(t *testing.T) {
	t.Setenv("DB_SERVER", "localhost:3306")
	t.Setenv("DB_NAME", "firetrack")
	t.Setenv("DB_USER", "firetrack")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := LoadStore()
	require.NoError(t, err)
	assert.Equal(t, "localhost:3306", cfg.Database.Server)
	assert.Equal(t, 30*time.Minute, cfg.Activation.CodeTTL)
}
