package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadFromEnv tests loading configuration from environment variables
func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret_key")

	cfg := &Config{}
	err := cfg.LoadFromEnv()
	require.NoError(t, err)

	// Verify defaults
	require.Equal(t, "8080", cfg.API.Port)
	require.Equal(t, "localhost", cfg.Database.Host)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, "securevault", cfg.Database.DBName)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, "test_secret_key", cfg.Auth.JWTSecret)
	require.Equal(t, 24*time.Hour, cfg.Auth.SessionDuration)
	require.Equal(t, 5, cfg.Auth.LockoutThreshold)
	require.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
	require.True(t, cfg.Auth.RegistrationOpen)
	require.Equal(t, 100, cfg.RateLimit.Requests)
	require.Equal(t, 60, cfg.RateLimit.Window)
	require.Equal(t, "0 * * * *", cfg.Cleanup.Schedule)
	require.Equal(t, 90*24*time.Hour, cfg.Cleanup.AttemptRetention)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret_key")
	t.Setenv("SESSION_DURATION", "1h")
	t.Setenv("LOCKOUT_THRESHOLD", "3")
	t.Setenv("LOCKOUT_DURATION", "10m")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")

	cfg := &Config{}
	err := cfg.LoadFromEnv()
	require.NoError(t, err)

	require.Equal(t, time.Hour, cfg.Auth.SessionDuration)
	require.Equal(t, 3, cfg.Auth.LockoutThreshold)
	require.Equal(t, 10*time.Minute, cfg.Auth.LockoutDuration)
	require.Equal(t, 5, cfg.RateLimit.Requests)
}

// TestLoadFromEnvMissingSecret tests that a missing JWT secret is rejected
func TestLoadFromEnvMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg := &Config{}
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	require.Contains(t, err.Error(), "JWT_SECRET")
}
