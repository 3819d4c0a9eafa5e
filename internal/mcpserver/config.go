package mcpserver

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// Cache settings.
	CacheEnabled       bool
	CacheMaxSize       int
	CacheFileTTL       time.Duration
	CacheURLTTL        time.Duration
	CacheContentTTL    time.Duration
	CacheSweepInterval time.Duration

	// Result limits.
	ListLimit int
	MaxLimit  int

	// Input limits.
	MaxInlineSize   int64
	MaxFileSize     int64
	AllowPrivateIPs bool

	// Validate tool defaults.
	ValidateFastFail      bool
	ValidateStrictFormats bool
	ValidateRedact        bool
	ValidateNoWarnings    bool
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from OASKIT_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		CacheEnabled:          envBool("OASKIT_CACHE_ENABLED", true),
		CacheMaxSize:          envInt("OASKIT_CACHE_MAX_SIZE", 10),
		CacheFileTTL:          envDuration("OASKIT_CACHE_FILE_TTL", 15*time.Minute),
		CacheURLTTL:           envDuration("OASKIT_CACHE_URL_TTL", 5*time.Minute),
		CacheContentTTL:       envDuration("OASKIT_CACHE_CONTENT_TTL", 15*time.Minute),
		CacheSweepInterval:    envDuration("OASKIT_CACHE_SWEEP_INTERVAL", 60*time.Second),
		ListLimit:             envInt("OASKIT_LIST_LIMIT", 100),
		MaxLimit:              envInt("OASKIT_MAX_LIMIT", 1000),
		MaxInlineSize:         envInt64("OASKIT_MAX_INLINE_SIZE", 10*1024*1024),
		MaxFileSize:           envInt64("OASKIT_MAX_FILE_SIZE", 10*1024*1024),
		AllowPrivateIPs:       envBool("OASKIT_ALLOW_PRIVATE_IPS", false),
		ValidateFastFail:      envBool("OASKIT_VALIDATE_FAST_FAIL", false),
		ValidateStrictFormats: envBool("OASKIT_VALIDATE_STRICT_FORMATS", false),
		ValidateRedact:        envBool("OASKIT_VALIDATE_REDACT", false),
		ValidateNoWarnings:    envBool("OASKIT_VALIDATE_NO_WARNINGS", false),
	}
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("invalid bool env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
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
	if err != nil || n <= 0 {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
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
	if err != nil || n <= 0 {
		slog.Warn("invalid int64 env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback) //nolint:gosec // G706: values are structured log fields, not format strings
		return fallback
	}
	return d
}
