package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "gsc_portal", cfg.Database.Name)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0 18 * * 0", cfg.Scheduler.WeeklyDigestSpec)
	assert.Equal(t, 30*time.Second, cfg.App.ShutdownTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_DISABLED", "true")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://portal.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Disabled)
	assert.Equal(t, 50, cfg.Database.MaxConns)
	assert.Equal(t, []string{"https://portal.example.com", "https://admin.example.com"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.App.ShutdownTimeout)
}

func TestValidate_Production(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err, "production needs credentials and explicit origins")
}

func TestValidate_BadCronSpec(t *testing.T) {
	t.Setenv("SCHEDULER_WEEKLY_DIGEST_SPEC", "every sunday")

	_, err := Load()
	assert.Error(t, err)
}
