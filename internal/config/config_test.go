package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "ALLOWED_ORIGINS", "MAX_MESSAGE_SIZE",
		"RATE_LIMIT_BURST", "RATE_LIMIT_REFILL_INTERVAL",
		"HISTORY_LIMIT", "REAP_INTERVAL", "IDLE_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(4096), cfg.MaxMessageSize)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 500, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Minute, cfg.ReapInterval)
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example ,")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "42")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2")
	t.Setenv("HISTORY_LIMIT", "100")
	t.Setenv("REAP_INTERVAL", "30s")
	t.Setenv("IDLE_TIMEOUT", "1m")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(1024), cfg.MaxMessageSize)
	assert.Equal(t, 42, cfg.RateLimit.Burst)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, 30*time.Second, cfg.ReapInterval)
	assert.Equal(t, time.Minute, cfg.IdleTimeout)
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("MAX_MESSAGE_SIZE", "garbage")
	t.Setenv("RATE_LIMIT_BURST", "-3")
	t.Setenv("REAP_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, int64(4096), cfg.MaxMessageSize)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, 5*time.Minute, cfg.ReapInterval)
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":3000", (&Config{Port: "3000"}).Addr())
	assert.Equal(t, ":8080", (&Config{Port: ":8080"}).Addr())
}
