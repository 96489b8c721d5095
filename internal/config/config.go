package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string

	// LedgerBackend selects the account store: "memory" or "sqlite".
	LedgerBackend string
	// DefaultTokens is the balance seeded into new accounts.
	DefaultTokens int

	// OpenAI generation backend.
	OpenAIKey     string
	OpenAIBaseURL string
	// GenerationTimeout bounds each backend call.
	GenerationTimeout time.Duration

	// Stripe webhook signing secret.
	StripeWebhookSecret string

	// StatInterval is how often host stats are sampled.
	StatInterval time.Duration
	// RetentionCron schedules the event/transaction sweeper.
	RetentionCron string
	// RetentionDays is how long events are kept.
	RetentionDays int

	AllowedOrigins []string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, err
	}

	defaultTokens, err := strconv.Atoi(getEnv("DEFAULT_TOKENS", "100"))
	if err != nil {
		return nil, err
	}

	generationTimeout, err := time.ParseDuration(getEnv("GENERATION_TIMEOUT", "60s"))
	if err != nil {
		return nil, err
	}

	statInterval, err := time.ParseDuration(getEnv("STAT_INTERVAL", "15s"))
	if err != nil {
		return nil, err
	}

	retentionDays, err := strconv.Atoi(getEnv("RETENTION_DAYS", "30"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:          port,
		DatabasePath:        getEnv("DATABASE_PATH", "./koloni.db"),
		LedgerBackend:       getEnv("LEDGER_BACKEND", "sqlite"),
		DefaultTokens:       defaultTokens,
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       os.Getenv("OPENAI_BASE_URL"),
		GenerationTimeout:   generationTimeout,
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StatInterval:        statInterval,
		RetentionCron:       getEnv("RETENTION_CRON", "0 3 * * *"),
		RetentionDays:       retentionDays,
		AllowedOrigins:      []string{getEnv("FRONTEND_ORIGIN", "http://localhost:3000")},
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
