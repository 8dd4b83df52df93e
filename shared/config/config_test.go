package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"DB_HOST", "JWT_EXPIRE_HOURS", "CORS_ALLOWED_ORIGINS", "AUDIT_RETENTION_DAYS", "SERVER_PORT"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.True(t, cfg.IsLocalDatabase())
	assert.Equal(t, "8003", cfg.ServerPort)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 3*time.Hour, cfg.JWTExpireDuration())
	assert.Equal(t, 90*24*time.Hour, cfg.AuditRetention())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_EXPIRE_HOURS", "12")
	t.Setenv("RATE_LIMIT_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("RATE_LIMIT_BLOCK_DURATION_MINUTES", "5")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg := FromEnv()
	assert.False(t, cfg.IsLocalDatabase())
	assert.Equal(t, 12*time.Hour, cfg.JWTExpireDuration())
	assert.Equal(t, 2.5, cfg.RateLimitRequestsPerSecond)
	assert.Equal(t, 5*time.Minute, cfg.RateLimitBlockDuration())
	assert.False(t, cfg.DBAutoMigrate)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestFromEnvFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("JWT_EXPIRE_HOURS", "soon")
	t.Setenv("RATE_LIMIT_BURST", "many")
	t.Setenv("DB_AUTO_MIGRATE", "maybe")

	cfg := FromEnv()
	assert.Equal(t, 3, cfg.JWTExpireHours)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.True(t, cfg.DBAutoMigrate)
}

func TestJWTExpireDurationNonPositive(t *testing.T) {
	cfg := &Config{JWTExpireHours: 0}
	assert.Equal(t, 24*time.Hour, cfg.JWTExpireDuration())
}

func TestLoginRateLimitSettings(t *testing.T) {
	for _, key := range []string{"LOGIN_RATE_LIMIT_MAX_ATTEMPTS", "LOGIN_RATE_LIMIT_WINDOW_SECONDS", "LOGIN_RATE_LIMIT_BLOCK_MINUTES"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	assert.Equal(t, 5, cfg.LoginRateLimitMaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.LoginRateLimitWindow())
	assert.Equal(t, 30*time.Minute, cfg.LoginRateLimitBlockDuration())

	t.Setenv("LOGIN_RATE_LIMIT_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_RATE_LIMIT_WINDOW_SECONDS", "60")
	cfg = FromEnv()
	assert.Equal(t, 3, cfg.LoginRateLimitMaxAttempts)
	assert.Equal(t, time.Minute, cfg.LoginRateLimitWindow())
}
