package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/aristath/rotation-trader/internal/domain"
)

// Config holds application configuration
type Config struct {
	DatabasePath       string
	StrategyConfigPath string
	MarketDataURL      string
	BrokerURL          string
	BrokerAPIKey       string
	Mode               domain.ExecutionContext
	InitialCapital     float64
	LogLevel           string
	Port               int
	DevMode            bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnvAsInt("PORT", 8010),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		DatabasePath:       getEnv("DATABASE_PATH", "./data/rotation.db"),
		StrategyConfigPath: getEnv("STRATEGY_CONFIG_PATH", "./config/strategy.toml"),
		MarketDataURL:      getEnv("MARKET_DATA_URL", "http://localhost:9010"),
		BrokerURL:          getEnv("BROKER_URL", "http://localhost:9011"),
		BrokerAPIKey:       getEnv("BROKER_API_KEY", ""),
		Mode:               domain.ExecutionContext(getEnv("MODE", string(domain.ContextBacktest))),
		InitialCapital:     getEnvAsFloat("INITIAL_CAPITAL", 20000),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
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

	if c.StrategyConfigPath == "" {
		return fmt.Errorf("STRATEGY_CONFIG_PATH is required")
	}

	if c.InitialCapital <= 0 {
		return fmt.Errorf("INITIAL_CAPITAL must be positive, got %.2f", c.InitialCapital)
	}

	switch c.Mode {
	case domain.ContextBacktest, domain.ContextLive:
	default:
		return fmt.Errorf("MODE must be %q or %q, got %q", domain.ContextBacktest, domain.ContextLive, c.Mode)
	}

	// Broker credentials only matter when trading live
	if c.Mode == domain.ContextLive && c.BrokerAPIKey == "" {
		return fmt.Errorf("BROKER_API_KEY is required in live mode")
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
