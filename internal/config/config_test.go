package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "SNAPSHOT_BACKEND", "STRICT_STOCK", "ADMIN_TOKEN_TTL", "REDIS_DB"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, BackendFile, cfg.Snapshot.Backend)
	assert.False(t, cfg.StrictStock)
	assert.Equal(t, 15*time.Minute, cfg.Admin.TokenTTL)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SNAPSHOT_BACKEND", BackendRedis)
	t.Setenv("STRICT_STOCK", "true")
	t.Setenv("ADMIN_TOKEN_TTL", "1h")
	t.Setenv("SHUTDOWN_TIMEOUT", "3")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("POSTGRES_AUTO_MIGRATE", "false")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, BackendRedis, cfg.Snapshot.Backend)
	assert.True(t, cfg.StrictStock)
	assert.Equal(t, time.Hour, cfg.Admin.TokenTTL)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.False(t, cfg.Postgres.AutoMigrate)
}

func TestFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("STRICT_STOCK", "maybe")
	t.Setenv("REDIS_DB", "two")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := FromEnv()

	assert.False(t, cfg.StrictStock)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}
