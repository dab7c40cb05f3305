package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	SessionBackend string
	RedisAddr      string
	SessionTTL     time.Duration
	SnapshotKey    string
	LookupTimeout  time.Duration
	LogLevel       string
	Env            string
}

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		SessionBackend: envOrDefault("SESSION_BACKEND", "memory"),
		RedisAddr:      envOrDefault("REDIS_ADDR", "localhost:6379"),
		SessionTTL:     envDuration("SESSION_TTL_SECONDS", 24*time.Hour),
		SnapshotKey:    envOrDefault("CART_SNAPSHOT_KEY", "cart:snapshot"),
		LookupTimeout:  envDuration("LOOKUP_TIMEOUT_SECONDS", 10*time.Second),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		Env:            envOrDefault("APP_ENV", "dev"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
