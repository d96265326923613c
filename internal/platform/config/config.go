// Package config loads server configuration from a .env file and the
// environment. Every value has a default so the server runs with no setup.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the tunable settings of the game server.
type Config struct {
	Addr          string // HTTP/WS listen address
	DBPath        string // SQLite database file
	MovesPerMonth int    // turns per simulated month
	RandomSeed    int64  // 0 means seed from the clock
	LogLevel      string
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:          getString("MONEYRACE_ADDR", ":8080"),
		DBPath:        getString("MONEYRACE_DB", "moneyrace.db"),
		MovesPerMonth: getInt("MONEYRACE_MOVES_PER_MONTH", 4),
		RandomSeed:    getInt64("MONEYRACE_SEED", 0),
		LogLevel:      getString("MONEYRACE_LOG_LEVEL", "info"),
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
