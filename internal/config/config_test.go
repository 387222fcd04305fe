package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFromEnv_Defaults tests that optional settings fall back sanely
func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/finboard_test")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 25, cfg.DBMaxConnections)
	assert.Equal(t, 10*time.Second, cfg.StatementTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "finboard", cfg.AMQPExchange)
	assert.Equal(t, "ledger-events", cfg.AMQPQueue)
	assert.Equal(t, time.Hour, cfg.RecurringInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

// TestLoadFromEnv_Overrides tests that environment variables win
func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/finboard_test")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_MAX_CONNECTIONS", "5")
	t.Setenv("STATEMENT_TIMEOUT", "2s")
	t.Setenv("RECURRING_INTERVAL", "15m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.DBMaxConnections)
	assert.Equal(t, 2*time.Second, cfg.StatementTimeout)
	assert.Equal(t, 15*time.Minute, cfg.RecurringInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

// TestLoadFromEnv_RequiresDatabaseURL tests the one always-required field
func TestLoadFromEnv_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

// TestLoadFromEnv_ProductionValidation tests the production-only requirements
func TestLoadFromEnv_ProductionValidation(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/finboard_test")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CLERK_SECRET_KEY", "")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLERK_SECRET_KEY")

	t.Setenv("CLERK_SECRET_KEY", "sk_test_abc")
	t.Setenv("S3_BUCKET", "")
	_, err = LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET")

	t.Setenv("S3_BUCKET", "finboard-reports")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}

// TestLoadFromEnv_InvalidNumbersFallBack tests that malformed values keep
// the defaults instead of failing startup
func TestLoadFromEnv_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/finboard_test")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}
