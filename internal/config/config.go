package config

import (
	"os"
	"time"
)

// Config holds all configuration for the API service
type Config struct {
	// Server
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins string

	// Generator (upstream completion API)
	GeneratorAPIKey  string
	GeneratorBaseURL string
	GeneratorModel   string
	GeneratorTimeout time.Duration

	// Optional debug mirror; empty disables it
	NATSURL string

	// Dataset
	DatasetPath string

	// Plan result cache
	CacheTTL time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:   getEnv("ALLOWED_ORIGINS", "*"),
		GeneratorAPIKey:  getEnv("GENERATOR_API_KEY", ""),
		GeneratorBaseURL: getEnv("GENERATOR_BASE_URL", "https://api.openai.com/v1"),
		GeneratorModel:   getEnv("GENERATOR_MODEL", "gpt-4o-mini"),
		GeneratorTimeout: getDuration("GENERATOR_TIMEOUT", 120*time.Second),
		NATSURL:          getEnv("NATS_URL", ""),
		DatasetPath:      getEnv("DATASET_PATH", "data/activities.json"),
		CacheTTL:         getDuration("CACHE_TTL", 10*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
