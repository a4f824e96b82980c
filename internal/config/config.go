package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for simulation-engine
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OpenAI   OpenAIConfig
	Retell   RetellConfig
	Voices   VoicesConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	DSN           string
	MaxOpenConns  int
	MaxIdleConns  int
	MigrationsDir string
}

// RedisConfig holds Redis configuration for the preview audit trail
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// OpenAIConfig holds text-generation provider configuration
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// RetellConfig holds voice-agent provider configuration
type RetellConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// VoicesConfig holds the voice catalog configuration
type VoicesConfig struct {
	Dir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			DSN:           getEnv("DATABASE_DSN", ""),
			MaxOpenConns:  getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 5),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o"),
			Timeout: getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
		},
		Retell: RetellConfig{
			APIKey:  getEnv("RETELL_API_KEY", ""),
			BaseURL: getEnv("RETELL_BASE_URL", "https://api.retellai.com"),
			Timeout: getEnvAsDuration("RETELL_TIMEOUT", 30*time.Second),
		},
		Voices: VoicesConfig{
			Dir: getEnv("VOICES_DIR", "./voices"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration. Missing provider credentials or a
// missing store DSN refuse startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}

	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	if c.Retell.APIKey == "" {
		return fmt.Errorf("RETELL_API_KEY is required")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
