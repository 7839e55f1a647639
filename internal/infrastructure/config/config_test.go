package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "inventory-core", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "inventory", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Workflow.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Workflow.RetryBackoff)
	assert.Equal(t, 24*time.Hour, cfg.Workflow.IdempotencyTTL)
	assert.Equal(t, time.Minute, cfg.Workflow.IdempotencyLease)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("HESTAMI_APP_NAME", "test-core")
	t.Setenv("HESTAMI_APP_PORT", "9000")
	t.Setenv("HESTAMI_DATABASE_HOST", "db.internal")
	t.Setenv("HESTAMI_DATABASE_PASSWORD", "secret")
	t.Setenv("HESTAMI_REDIS_ENABLED", "true")
	t.Setenv("HESTAMI_WORKFLOW_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-core", cfg.App.Name)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5, cfg.Workflow.MaxAttempts)
}

func TestValidateRejectsBadPoolSettings(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.MaxIdleConns = 50
	cfg.Database.MaxOpenConns = 10

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_idle_conns")
}

func TestValidateProductionRequirements(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.password")

	cfg.Database.Password = "secret"
	err = cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sslmode")

	cfg.Database.SSLMode = "require"
	assert.NoError(t, cfg.validate())
}

func TestValidateRejectsShortTTL(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Workflow.IdempotencyTTL = time.Second
	cfg.Workflow.IdempotencyLease = time.Minute

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idempotency_ttl")
}

func TestDSNEscapesCredentials(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "svc",
		Password: "p@ss w#rd",
		DBName:   "inventory",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.NotContains(t, dsn, "p@ss w#rd")
	assert.Contains(t, dsn, "sslmode=disable")
}
