package config

import (
	"fmt"

	"github.com/aristath/rotation-trader/internal/modules/allocation"
	"github.com/aristath/rotation-trader/internal/modules/risk"
	"github.com/aristath/rotation-trader/internal/modules/scoring"
)

// StrategyConfig is the full rotation policy, loaded once at startup and
// immutable afterwards.
type StrategyConfig struct {
	Name     string   `toml:"name"`
	Universe []string `toml:"universe"`

	Allocation allocation.Config `toml:"allocation"`
	Risk       risk.Config       `toml:"risk"`
	Scoring    scoring.Config    `toml:"scoring"`
	Schedule   ScheduleConfig    `toml:"schedule"`
}

// ScheduleConfig controls rebalance cadence and history depth
type ScheduleConfig struct {
	RebalanceDays int `toml:"rebalance_days"` // rebalance every N trading days
	LookbackDays  int `toml:"lookback_days"`  // candle history per evaluation
}

// NewDefaultConfig returns the policy the original rotation strategy shipped
// with: 5 slots of at most 20% each, trim half at -5%, full exit at -15%,
// rebalance every 5 trading days.
func NewDefaultConfig() *StrategyConfig {
	return &StrategyConfig{
		Name: "etf-rotation",
		Allocation: allocation.Config{
			MaxSlots:         5,
			MaxWeightPerSlot: 0.20,
		},
		Risk: risk.Config{
			TrimThresholdPct: -0.05,
			TrimFraction:     0.5,
			ExitThresholdPct: -0.15,
		},
		Scoring: scoring.Config{
			ShortPeriod:  10,
			LongPeriod:   30,
			VolumeWeight: 0.3,
		},
		Schedule: ScheduleConfig{
			RebalanceDays: 5,
			LookbackDays:  90,
		},
	}
}

// Validate fails fast on any policy that violates the engine's invariants
func (c *StrategyConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("strategy name is required")
	}

	if len(c.Universe) == 0 {
		return fmt.Errorf("universe must contain at least one symbol")
	}

	if err := c.Allocation.Validate(); err != nil {
		return fmt.Errorf("allocation config: %w", err)
	}

	if err := c.Risk.Validate(); err != nil {
		return fmt.Errorf("risk config: %w", err)
	}

	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring config: %w", err)
	}

	if c.Schedule.RebalanceDays < 1 {
		return fmt.Errorf("schedule config: rebalance_days must be at least 1, got %d", c.Schedule.RebalanceDays)
	}

	if c.Schedule.LookbackDays <= c.Scoring.LongPeriod {
		return fmt.Errorf("schedule config: lookback_days (%d) must exceed scoring long_period (%d)",
			c.Schedule.LookbackDays, c.Scoring.LongPeriod)
	}

	return nil
}
