package config_test

import (
	"testing"
	"time"

	"github.com/scanforge/engine/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SCAN_CACHE_CAPACITY", "")
	t.Setenv("SCAN_ENABLE_LIVE_FEEDS", "")
	t.Setenv("SCAN_MAX_INPUT_BYTES", "")
	t.Setenv("SCAN_GLOBAL_PROBE_DEADLINE_SEC", "")
	t.Setenv("SCAN_PER_REQUEST_TIMEOUT_SEC", "")
	t.Setenv("SCAN_PROFILE", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := config.Load()

	assert.Empty(t, cfg.Profile)
	assert.Equal(t, 256, cfg.CacheCapacity)
	assert.True(t, cfg.EnableLiveFeeds)
	assert.Equal(t, int64(52428800), cfg.MaxInputBytes)
	assert.Equal(t, 300*time.Second, cfg.GlobalProbeDeadline)
	assert.Equal(t, 10*time.Second, cfg.PerRequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SCAN_CACHE_CAPACITY", "512")
	t.Setenv("SCAN_ENABLE_LIVE_FEEDS", "false")
	t.Setenv("SCAN_MAX_INPUT_BYTES", "1024")
	t.Setenv("SCAN_GLOBAL_PROBE_DEADLINE_SEC", "60")
	t.Setenv("SCAN_PER_REQUEST_TIMEOUT_SEC", "5")
	t.Setenv("SCAN_PROFILE", "eu")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := config.Load()

	assert.Equal(t, "eu", cfg.Profile)
	assert.Equal(t, 512, cfg.CacheCapacity)
	assert.False(t, cfg.EnableLiveFeeds)
	assert.Equal(t, int64(1024), cfg.MaxInputBytes)
	assert.Equal(t, 60*time.Second, cfg.GlobalProbeDeadline)
	assert.Equal(t, 5*time.Second, cfg.PerRequestTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}
