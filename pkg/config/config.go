package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the scanning engine's tunable runtime parameters, loaded
// from environment variables with built-in defaults.
type Config struct {
	// CacheCapacity bounds the number of scan results held in the
	// coordinator's LRU result cache.
	CacheCapacity int
	// EnableLiveFeeds toggles outbound CVE/OSV lookups during a scan; a
	// deployment with no network egress can disable this and fall back to
	// the bundled rule catalogs only.
	EnableLiveFeeds bool
	// MaxInputBytes caps the size of a single scan's input payload.
	MaxInputBytes int64
	// GlobalProbeDeadline bounds one dynamic-probe run's total wall time.
	GlobalProbeDeadline time.Duration
	// PerRequestTimeout bounds a single dynamic-probe HTTP request.
	PerRequestTimeout time.Duration
	// ProfilesDir points at the directory of regional profile YAML files
	// consulted by LoadProfile/LoadAllProfiles.
	ProfilesDir string
	// Profile selects the jurisdiction profile (by code, e.g. "eu") whose
	// networking policy gates dynamic probing. Empty means no profile.
	Profile string
	// LogLevel controls the structured logger's verbosity.
	LogLevel string
}

const (
	defaultCacheCapacity       = 256
	defaultMaxInputBytes       = 52428800 // 50 MiB
	defaultGlobalProbeDeadline = 300 * time.Second
	defaultPerRequestTimeout   = 10 * time.Second
)

// Load builds a Config from environment variables, falling back to
// defaults for anything unset or unparsable.
func Load() *Config {
	return &Config{
		CacheCapacity:       envInt("SCAN_CACHE_CAPACITY", defaultCacheCapacity),
		EnableLiveFeeds:     envBool("SCAN_ENABLE_LIVE_FEEDS", true),
		MaxInputBytes:       envInt64("SCAN_MAX_INPUT_BYTES", defaultMaxInputBytes),
		GlobalProbeDeadline: envDurationSeconds("SCAN_GLOBAL_PROBE_DEADLINE_SEC", defaultGlobalProbeDeadline),
		PerRequestTimeout:   envDurationSeconds("SCAN_PER_REQUEST_TIMEOUT_SEC", defaultPerRequestTimeout),
		ProfilesDir:         envString("SCAN_PROFILES_DIR", "pkg/config/profiles"),
		Profile:             envString("SCAN_PROFILE", ""),
		LogLevel:            envString("LOG_LEVEL", "info"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
