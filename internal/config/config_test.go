package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QUOTA_DAILY_LIMIT", "")
	t.Setenv("QUOTA_MONTHLY_LIMIT", "")
	t.Setenv("QUOTA_STORE", "")
	t.Setenv("QUOTA_TIMEZONE_NAME", "")
	t.Setenv("QUOTA_RETENTION", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Quota.DailyLimit)
	assert.Equal(t, 20, cfg.Quota.MonthlyLimit)
	assert.Equal(t, "Europe/Istanbul", cfg.Quota.Timezone)
	assert.Equal(t, "Turkey", cfg.Quota.TimezoneFallback)
	assert.Equal(t, "postgres", cfg.Quota.Store)
	assert.Equal(t, 1488*time.Hour, cfg.Quota.Retention)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("QUOTA_DAILY_LIMIT", "3")
	t.Setenv("QUOTA_MONTHLY_LIMIT", "12")
	t.Setenv("QUOTA_STORE", "Redis")
	t.Setenv("QUOTA_SERIALIZE", "true")
	t.Setenv("QUOTA_LOCK_WAIT", "750ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Quota.DailyLimit)
	assert.Equal(t, 12, cfg.Quota.MonthlyLimit)
	assert.Equal(t, "redis", cfg.Quota.Store)
	assert.True(t, cfg.Quota.Serialize)
	assert.Equal(t, 750*time.Millisecond, cfg.Quota.LockWait)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("QUOTA_LOCK_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota.lock.ttl")
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", c.DSN())
}
