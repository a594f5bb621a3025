package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "")
	t.Setenv("PROFILE_SAVE_RETRIES", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 3, cfg.SaveRetries)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROFILE_SAVE_RETRIES", "5")
	t.Setenv("JWT_ACCESS_EXPIRY", "1h")
	t.Setenv("DB_NAME", "nestgirl_test")

	cfg := Load()
	assert.Equal(t, 5, cfg.SaveRetries)
	assert.Equal(t, time.Hour, cfg.JWTAccessExpiry)
	assert.Contains(t, cfg.DSN(), "dbname=nestgirl_test")
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("PROFILE_SAVE_RETRIES", "-2")
	t.Setenv("AI_TIMEOUT", "soon")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

	cfg := Load()
	assert.Equal(t, 3, cfg.SaveRetries)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, time.UTC, cfg.Location())
}
