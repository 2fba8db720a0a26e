package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the process-level configuration. Gameplay tunables live in
// game.Tuning; this only covers how the server runs.
type Config struct {
	Port     string
	TickRate int
	LogSinks []string
}

// Load reads a .env file if one exists, then the environment, falling back
// to defaults. A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:     envString("PORT", "8080"),
		TickRate: envInt("TICK_RATE", 30),
		LogSinks: envList("LOG_SINKS", []string{"console"}),
	}
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
