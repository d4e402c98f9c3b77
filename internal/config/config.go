package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	EncryptionKey string
	Remote        RemoteScoreConfig
	Fitness       FitnessConfig
	SyncCron      string
}

// RemoteScoreConfig holds settings for the remote scoring endpoint
type RemoteScoreConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RegenerateTimeout time.Duration
}

// FitnessConfig holds the third-party fitness API settings
type FitnessConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		Remote: RemoteScoreConfig{
			BaseURL:           getEnv("SCORE_API_URL", ""),
			Timeout:           getEnvAsSeconds("SCORE_TIMEOUT_SECONDS", 15),
			RegenerateTimeout: getEnvAsSeconds("SCORE_REGENERATE_TIMEOUT_SECONDS", 20),
		},
		Fitness: FitnessConfig{
			BaseURL:      getEnv("FITNESS_API_URL", "https://api.fitbit.com"),
			TokenURL:     getEnv("FITNESS_TOKEN_URL", "https://api.fitbit.com/oauth2/token"),
			ClientID:     getEnv("FITNESS_CLIENT_ID", ""),
			ClientSecret: getEnv("FITNESS_CLIENT_SECRET", ""),
		},
		SyncCron: getEnv("SYNC_CRON", "30 6 * * *"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set in environment variables")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultValue int) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return time.Duration(defaultValue) * time.Second
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return time.Duration(defaultValue) * time.Second
	}
	return time.Duration(value) * time.Second
}
