package config

import (
	"os"
	"strconv"
	"strings"
)

// Version is reported by the info and health endpoints
const Version = "1.0.0"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Environment string
	APIPrefix   string
	CORSOrigins []string
	LogLevel    string
}

// StoreConfig holds weapon data configuration
type StoreConfig struct {
	Dir     string
	Preload bool
}

// RedisConfig holds Redis connection configuration.
// An empty URL disables the catalog cache and load events.
type RedisConfig struct {
	URL    string
	Stream string
}

// QueryLogConfig holds the Postgres query log configuration.
// An empty DSN disables query logging.
type QueryLogConfig struct {
	DSN string
}

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Redis    RedisConfig
	QueryLog QueryLogConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnvInt("PORT", 3000),
			Environment: getEnv("APP_ENV", getEnv("NODE_ENV", "development")),
			APIPrefix:   normalizePrefix(getEnv("API_PREFIX", "/api")),
			CORSOrigins: splitList(getEnv("CORS_ORIGIN", "*")),
			LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Store: StoreConfig{
			Dir:     getEnv("WEAPONS_DIR", "weapon"),
			Preload: getEnvBool("WEAPONS_PRELOAD", false),
		},
		Redis: RedisConfig{
			URL:    getEnv("REDIS_URL", ""),
			Stream: getEnv("WEAPONS_STREAM", "weapons.loaded"),
		},
		QueryLog: QueryLogConfig{
			DSN: getEnv("QUERY_LOG_DSN", ""),
		},
	}
}

// IsProduction reports whether error details must be hidden from clients
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// LogRequests reports whether per-request access logs are enabled
func (c *ServerConfig) LogRequests() bool {
	switch c.LogLevel {
	case "warn", "error", "silent":
		return false
	default:
		return true
	}
}

// normalizePrefix returns the prefix with a leading slash and no trailing slash
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
