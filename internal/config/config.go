package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string

	// LLM provider settings. Provider is "anthropic" or "ollama".
	LLMProvider     string
	AnthropicAPIKey string
	OllamaURL       string
	ModelName       string

	// Game rule overrides.
	JuryStartSize int
	ActionsPerDay int

	ReadyCountdown    time.Duration
	AutosaveInterval  time.Duration
	AIDecisionTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		LLMProvider:     getEnv("LLM_PROVIDER", "ollama"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaURL:       getEnv("OLLAMA_URL", "http://localhost:11434"),
		ModelName:       getEnv("MODEL_NAME", "llama3"),

		JuryStartSize: getEnvInt("JURY_START_SIZE", 2),
		ActionsPerDay: getEnvInt("ACTIONS_PER_DAY", 3),

		ReadyCountdown:    getEnvSeconds("READY_COUNTDOWN_SECONDS", 30),
		AutosaveInterval:  getEnvSeconds("AUTOSAVE_INTERVAL_SECONDS", 300),
		AIDecisionTimeout: getEnvSeconds("AI_DECISION_TIMEOUT_SECONDS", 20),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
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

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
