// Package config loads settings from the environment and sets up logging.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Wikidata upstream
	APIURL    string
	SPARQLURL string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration

	// Tables
	DefaultLang    string
	ElementSource  string // sparql, api, snapshot or surreal
	NuclideSource  string // sparql, snapshot or surreal
	SnapshotPath   string
	LayoutFile     string // optional YAML layout; built-in layout when empty
	StrictNuclides bool

	// HTTP server
	Port        string
	RefreshSink string // snapshot or surreal enables refresh jobs; empty disables them

	// CLI
	ServerURL string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		// SurrealDB
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "wdtable"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "tables"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		// Wikidata (empty selects the client defaults)
		APIURL:    getEnv("WDTABLE_API_URL", ""),
		SPARQLURL: getEnv("WDTABLE_SPARQL_URL", ""),
		UserAgent: getEnv("WDTABLE_USER_AGENT", ""),
		Timeout:   getDuration("WDTABLE_TIMEOUT", time.Minute),
		CacheTTL:  getDuration("WDTABLE_CACHE_TTL", 6*time.Hour),

		// Tables
		DefaultLang:    getEnv("WDTABLE_LANG", "en"),
		ElementSource:  getEnv("WDTABLE_SOURCE", "sparql"),
		NuclideSource:  getEnv("WDTABLE_NUCLIDE_SOURCE", "sparql"),
		SnapshotPath:   getEnv("WDTABLE_SNAPSHOT", "wdtable-snapshot.yaml"),
		LayoutFile:     getEnv("WDTABLE_LAYOUT_FILE", ""),
		StrictNuclides: getBool("WDTABLE_STRICT_NUCLIDES", false),

		// Server
		Port:        getEnv("WDTABLE_PORT", "8080"),
		RefreshSink: getEnv("WDTABLE_REFRESH", ""),

		// CLI
		ServerURL: getEnv("WDTABLE_SERVER_URL", "http://localhost:8080"),

		// Logging
		LogFile:  getEnv("WDTABLE_LOG_FILE", "/tmp/wdtable.log"),
		LogLevel: parseLogLevel(getEnv("WDTABLE_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return d
}

func getBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		slog.Warn("invalid boolean, using default", "key", key, "value", val, "default", defaultVal)
		return defaultVal
	}
	return b
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
