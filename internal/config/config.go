package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Server
	Port        string
	FrontendURL string

	// Database (optional — empty disables shot history)
	DatabaseURL string

	// Redis (optional — empty disables snapshot caching)
	RedisURL string

	// Game settings
	MinStakeAmount       int
	SessionExpiryMinutes int
	ExpiryPollSeconds    int
	BotThinkDelayMs      int
	FrameIntervalMs      int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),

		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		MinStakeAmount:       getEnvInt("MIN_STAKE_AMOUNT", 0),
		SessionExpiryMinutes: getEnvInt("SESSION_EXPIRY_MINUTES", 10),
		ExpiryPollSeconds:    getEnvInt("EXPIRY_POLL_SECONDS", 30),
		BotThinkDelayMs:      getEnvInt("BOT_THINK_DELAY_MS", 1200),
		FrameIntervalMs:      getEnvInt("FRAME_INTERVAL_MS", 33),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
