package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Remote ledger
	LedgerBaseURL string
	LedgerToken   string
	LedgerTimeout time.Duration

	// Sync
	SyncLookbackDays int
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "mybudget"),
		DBPassword: getEnv("DB_PASSWORD", "mybudget"),
		DBName:     getEnv("DB_NAME", "mybudget"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Remote ledger
		LedgerBaseURL: getEnv("LEDGER_BASE_URL", "https://api.lunchmoney.dev/v2"),
		LedgerToken:   getEnv("LEDGER_TOKEN", ""),
	}

	// Parse ledger client timeout
	timeoutStr := getEnv("LEDGER_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.Printf("Warning: invalid LEDGER_TIMEOUT value '%s', falling back to 30s\n", timeoutStr)
		timeout = 30 * time.Second
	}
	config.LedgerTimeout = timeout

	// Parse sync look-back window
	lookbackStr := getEnv("SYNC_LOOKBACK_DAYS", "7")
	lookback, err := strconv.Atoi(lookbackStr)
	if err != nil || lookback < 1 {
		log.Printf("Warning: invalid SYNC_LOOKBACK_DAYS value '%s', falling back to 7\n", lookbackStr)
		lookback = 7
	}
	config.SyncLookbackDays = lookback

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
