package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DBPath                string
	LogLevel              string
	OpenAIAPIKey          string
	OpenAIModel           string
	ContentWorkerCount    int
	ContentQueueSize      int
	ReminderIntervalHours int
	DefaultMaxItems       int
	DefaultSourceLang     string
	DefaultTargetLang     string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBPath:                envOr("DB_PATH", "file:phraseflash.db"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		OpenAIAPIKey:          envOr("OPENAI_API_KEY", ""),
		OpenAIModel:           envOr("OPENAI_MODEL", ""),
		ContentWorkerCount:    envIntOr("CONTENT_WORKER_COUNT", 2),
		ContentQueueSize:      envIntOr("CONTENT_QUEUE_SIZE", 32),
		ReminderIntervalHours: envIntOr("REMINDER_INTERVAL_HOURS", 1),
		DefaultMaxItems:       envIntOr("DEFAULT_MAX_ITEMS", 20),
		DefaultSourceLang:     envOr("DEFAULT_SOURCE_LANG", "en"),
		DefaultTargetLang:     envOr("DEFAULT_TARGET_LANG", "es"),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}
	if c.ContentWorkerCount < 1 {
		problems = append(problems, fmt.Sprintf("CONTENT_WORKER_COUNT must be at least 1, got %d", c.ContentWorkerCount))
	}
	if c.ContentQueueSize < 1 {
		problems = append(problems, fmt.Sprintf("CONTENT_QUEUE_SIZE must be at least 1, got %d", c.ContentQueueSize))
	}
	if c.ReminderIntervalHours < 0 {
		problems = append(problems, fmt.Sprintf("REMINDER_INTERVAL_HOURS cannot be negative, got %d", c.ReminderIntervalHours))
	}
	if c.DefaultMaxItems < 1 {
		problems = append(problems, fmt.Sprintf("DEFAULT_MAX_ITEMS must be at least 1, got %d", c.DefaultMaxItems))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
