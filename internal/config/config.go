package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// RateLimitConfig defines the parameters for per-connection message rate
// limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds all configuration for the relay.
type Config struct {
	Port           string
	Env            string
	AllowedOrigins []string
	MaxMessageSize int64
	RateLimit      RateLimitConfig

	// Room engine policy values
	HistoryLimit int
	ReapInterval time.Duration
	IdleTimeout  time.Duration
}

// Load reads configuration from environment variables, falling back to
// defaults. In development, a .env file is loaded if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "3000"),
		Env:            getEnv("ENV", "development"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "*")),
		MaxMessageSize: parseInt64(os.Getenv("MAX_MESSAGE_SIZE"), 4096),
		RateLimit: RateLimitConfig{
			Burst:          parseInt(os.Getenv("RATE_LIMIT_BURST"), 10),
			RefillInterval: parseSeconds(os.Getenv("RATE_LIMIT_REFILL_INTERVAL"), time.Second),
		},
		HistoryLimit: parseInt(os.Getenv("HISTORY_LIMIT"), 500),
		ReapInterval: parseDuration(os.Getenv("REAP_INTERVAL"), 5*time.Minute),
		IdleTimeout:  parseDuration(os.Getenv("IDLE_TIMEOUT"), 5*time.Minute),
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	trimmed := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			trimmed = append(trimmed, part)
		}
	}
	return trimmed
}

func parseInt(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseInt64(value string, defaultValue int64) int64 {
	if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseSeconds(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}
