package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Loader handles loading strategy configurations from TOML files.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log.With().Str("component", "config_loader").Logger(),
	}
}

// LoadFromFile loads and validates a strategy configuration from a TOML file.
func (l *Loader) LoadFromFile(configPath string) (*StrategyConfig, error) {
	l.log.Info().Str("path", configPath).Msg("Loading strategy configuration")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	var config StrategyConfig
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}

	l.log.Info().
		Str("name", config.Name).
		Int("universe", len(config.Universe)).
		Int("max_slots", config.Allocation.MaxSlots).
		Float64("max_weight_per_slot", config.Allocation.MaxWeightPerSlot).
		Int("rebalance_days", config.Schedule.RebalanceDays).
		Msg("Configuration loaded successfully")

	return &config, nil
}

// LoadFromString loads and validates a strategy configuration from a TOML
// string. Useful for configurations stored in the database.
func (l *Loader) LoadFromString(tomlString string) (*StrategyConfig, error) {
	var config StrategyConfig
	if _, err := toml.Decode(tomlString, &config); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}

	l.log.Info().Str("name", config.Name).Msg("Configuration loaded from string")

	return &config, nil
}
