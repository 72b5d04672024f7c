package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, 10*time.Minute, cfg.WindowTTL)
	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.True(t, cfg.ProfileSkip)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WINDOW_TTL", "5m")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("PROFILE_SKIP", "false")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.WindowTTL)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.False(t, cfg.ProfileSkip)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("WINDOW_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_PER_MIN", "many")

	cfg := Load()
	assert.Equal(t, 10*time.Minute, cfg.WindowTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
}
