package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	LogLevel     string
	DatabasePath string
	ContextsPath string

	AnthropicAPIKey string
	LLMModel        string

	SweepSchedule string

	BackupEnabled  bool
	BackupBucket   string
	BackupSchedule string
	AWSRegion      string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8080),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/policysim.db"),
		ContextsPath: getEnv("CONTEXTS_PATH", ""),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		LLMModel:        getEnv("LLM_MODEL", ""),

		SweepSchedule: getEnv("SWEEP_SCHEDULE", "0 0 3 * * *"),

		BackupEnabled:  getEnvAsBool("BACKUP_ENABLED", false),
		BackupBucket:   getEnv("BACKUP_BUCKET", ""),
		BackupSchedule: getEnv("BACKUP_SCHEDULE", "0 30 3 * * *"),
		AWSRegion:      getEnv("AWS_REGION", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.BackupEnabled && c.BackupBucket == "" {
		return fmt.Errorf("BACKUP_BUCKET is required when BACKUP_ENABLED is set")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
