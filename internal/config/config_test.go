package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("FLOOR_VALIDATION", "")
	t.Setenv("PROPOSAL_TTL", "")
	t.Setenv("SWEEP_INTERVAL", "")
	t.Setenv("SWEEP_BATCH_SIZE", "")
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("AI_TIMEOUT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.True(t, cfg.FloorValidation)
	assert.Equal(t, time.Duration(0), cfg.ProposalTTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 100, cfg.SweepBatchSize)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Contains(t, cfg.DatabaseURL, "timebank")
	assert.Empty(t, cfg.AIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.AITimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("FLOOR_VALIDATION", "false")
	t.Setenv("PROPOSAL_TTL", "72h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("AI_BASE_URL", "https://llm.example/v1")
	t.Setenv("AI_TIMEOUT", "3s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://llm.example/v1", cfg.AIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.AITimeout)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.False(t, cfg.FloorValidation)
	assert.Equal(t, 72*time.Hour, cfg.ProposalTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestFromEnv_DatabaseURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "bank")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "tb")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://bank:p%40ss@db:5432/tb?sslmode=disable", cfg.DatabaseURL)
}

func TestFromEnv_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://timebank.example")

	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_BadValues(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "often")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("SWEEP_INTERVAL", "1m")
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err = FromEnv()
	assert.Error(t, err)
}
