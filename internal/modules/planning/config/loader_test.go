package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const validTOML = `
name = "etf-rotation"
universe = ["510300", "510500", "159915"]

[allocation]
max_slots = 5
max_weight_per_slot = 0.20

[risk]
trim_threshold_pct = -0.05
trim_fraction = 0.5
exit_threshold_pct = -0.15

[scoring]
short_period = 10
long_period = 30
volume_weight = 0.3

[schedule]
rebalance_days = 5
lookback_days = 90
`

func TestLoader_LoadFromString_Valid(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	cfg, err := loader.LoadFromString(validTOML)
	assert.NoError(t, err)
	assert.Equal(t, "etf-rotation", cfg.Name)
	assert.Len(t, cfg.Universe, 3)
	assert.Equal(t, 5, cfg.Allocation.MaxSlots)
	assert.Equal(t, 0.20, cfg.Allocation.MaxWeightPerSlot)
	assert.Equal(t, -0.15, cfg.Risk.ExitThresholdPct)
	assert.Equal(t, 5, cfg.Schedule.RebalanceDays)
}

func TestLoader_LoadFromString_InvalidTOML(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	_, err := loader.LoadFromString("name = [broken")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML config")
}

func TestLoader_LoadFromString_InvalidPolicy(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	// Exit threshold shallower than trim threshold
	invalid := `
name = "etf-rotation"
universe = ["510300"]

[allocation]
max_slots = 5
max_weight_per_slot = 0.20

[risk]
trim_threshold_pct = -0.15
trim_fraction = 0.5
exit_threshold_pct = -0.05

[scoring]
short_period = 10
long_period = 30
volume_weight = 0.3

[schedule]
rebalance_days = 5
lookback_days = 90
`

	_, err := loader.LoadFromString(invalid)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid strategy config")
}

func TestLoader_LoadFromFile_Missing(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	_, err := loader.LoadFromFile("/nonexistent/strategy.toml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestStrategyConfig_Validate(t *testing.T) {
	valid := func() *StrategyConfig {
		cfg := NewDefaultConfig()
		cfg.Universe = []string{"510300", "510500"}
		return cfg
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		cfg := valid()
		cfg.Name = ""
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("empty universe", func(t *testing.T) {
		cfg := valid()
		cfg.Universe = nil
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "universe")
	})

	t.Run("over-allocated slots", func(t *testing.T) {
		cfg := valid()
		cfg.Allocation.MaxSlots = 6
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "allocation config")
	})

	t.Run("misordered ladder", func(t *testing.T) {
		cfg := valid()
		cfg.Risk.ExitThresholdPct = -0.01
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "risk config")
	})

	t.Run("zero rebalance cadence", func(t *testing.T) {
		cfg := valid()
		cfg.Schedule.RebalanceDays = 0
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "rebalance_days")
	})

	t.Run("lookback shorter than long period", func(t *testing.T) {
		cfg := valid()
		cfg.Schedule.LookbackDays = 20
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "lookback_days")
	})
}
