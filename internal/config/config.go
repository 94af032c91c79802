// Package config provides configuration for the wagering engine: server
// and service settings from the environment, game math from a YAML file.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	ChipBank ChipBankConfig
	History  HistoryConfig
	Game     GameConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

// ChipBankConfig holds the settlement service client configuration.
type ChipBankConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// HistoryConfig holds the game recall store configuration. An empty DSN
// selects the in-memory store.
type HistoryConfig struct {
	PostgresDSN string
	Keep        int
}

// GameConfig holds game-related settings outside the math file.
type GameConfig struct {
	MathFile  string
	MinBet    float64
	MaxBet    float64
	CrashTick time.Duration
}

// Load loads configuration from environment with defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("CASINO_PORT", "8080"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("CASINO_JWT_SECRET", "casino-dev-secret-change-in-production"),
			TokenExpiry: 24 * time.Hour,
		},
		ChipBank: ChipBankConfig{
			BaseURL:    getEnv("CASINO_BANK_URL", "http://localhost:9090"),
			Timeout:    10 * time.Second,
			RetryCount: 2,
		},
		History: HistoryConfig{
			PostgresDSN: getEnv("CASINO_HISTORY_DSN", ""),
			Keep:        getEnvInt("CASINO_HISTORY_KEEP", 50),
		},
		Game: GameConfig{
			MathFile:  getEnv("CASINO_GAME_MATH", ""),
			MinBet:    getEnvFloat("CASINO_MIN_BET", 0.01),
			MaxBet:    getEnvFloat("CASINO_MAX_BET", 100),
			CrashTick: 50 * time.Millisecond,
		},
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
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
