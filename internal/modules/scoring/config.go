package scoring

import "fmt"

// Config holds the momentum scoring parameters
type Config struct {
	ShortPeriod  int     `toml:"short_period"`  // short momentum lookback in trading days
	LongPeriod   int     `toml:"long_period"`   // long momentum / volatility lookback
	VolumeWeight float64 `toml:"volume_weight"` // volume share of the blended momentum
}

// Validate checks the scoring parameters
func (c Config) Validate() error {
	if c.ShortPeriod < 1 {
		return fmt.Errorf("short_period must be at least 1, got %d", c.ShortPeriod)
	}

	if c.LongPeriod <= c.ShortPeriod {
		return fmt.Errorf("long_period (%d) must exceed short_period (%d)", c.LongPeriod, c.ShortPeriod)
	}

	if c.VolumeWeight < 0 || c.VolumeWeight >= 1 {
		return fmt.Errorf("volume_weight must be in [0, 1), got %.4f", c.VolumeWeight)
	}

	return nil
}
