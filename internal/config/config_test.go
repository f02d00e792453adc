package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/visitlog")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ALGORITHM", "HS256")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 90*24*time.Hour, cfg.LogRetention)
	assert.Equal(t, "https://ipinfo.io", cfg.GeoAPIBaseURL)
	assert.Equal(t, 10, cfg.LoginRateLimitMax)
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		missing string
	}{
		{"database url", "DATABASE_URL"},
		{"jwt secret", "JWT_SECRET"},
		{"jwt algorithm", "JWT_ALGORITHM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.missing, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("LOG_RETENTION_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 7*24*time.Hour, cfg.LogRetention)
}

func TestEnvIntOrDefaultIgnoresGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 42, envIntOrDefault("SOME_INT", 42))

	t.Setenv("SOME_INT", "-3")
	assert.Equal(t, 42, envIntOrDefault("SOME_INT", 42))
}
