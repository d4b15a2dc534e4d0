package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Addr string

	// DatabaseURL selects the Postgres store; empty runs the in-memory
	// store with seed data, for development.
	DatabaseURL string

	ScorerURL     string
	ScorerTimeout time.Duration

	ItemsPerPage      int
	BroadcastInterval time.Duration
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Addr:              getEnv("ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		ScorerURL:         getEnv("SCORER_URL", "http://localhost:5001/suggest"),
		ScorerTimeout:     time.Duration(getEnvInt("SCORER_TIMEOUT_MS", 10000)) * time.Millisecond,
		ItemsPerPage:      getEnvInt("ITEMS_PER_PAGE", 6),
		BroadcastInterval: time.Duration(getEnvInt("BROADCAST_INTERVAL_MS", 5000)) * time.Millisecond,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
