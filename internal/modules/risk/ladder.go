package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/rotation-trader/internal/domain"
)

// Config is the immutable stop-loss ladder policy
type Config struct {
	TrimThresholdPct float64 `toml:"trim_threshold_pct"` // e.g. -0.05
	TrimFraction     float64 `toml:"trim_fraction"`      // e.g. 0.5
	ExitThresholdPct float64 `toml:"exit_threshold_pct"` // e.g. -0.15
}

// Validate rejects ladder policies that cannot trigger or are misordered.
func (c Config) Validate() error {
	if c.TrimThresholdPct >= 0 {
		return fmt.Errorf("trim_threshold_pct must be negative, got %.4f", c.TrimThresholdPct)
	}

	if c.ExitThresholdPct >= 0 {
		return fmt.Errorf("exit_threshold_pct must be negative, got %.4f", c.ExitThresholdPct)
	}

	if c.ExitThresholdPct >= c.TrimThresholdPct {
		return fmt.Errorf("exit_threshold_pct (%.4f) must be below trim_threshold_pct (%.4f)",
			c.ExitThresholdPct, c.TrimThresholdPct)
	}

	if c.TrimFraction <= 0 || c.TrimFraction > 1 {
		return fmt.Errorf("trim_fraction must be in (0, 1], got %.4f", c.TrimFraction)
	}

	return nil
}

// Evaluate walks every held position through the stop-loss ladder and returns
// the forced de-risking intents, independent of the allocator's ranking:
//
//   - unrealized P&L at or below ExitThresholdPct: full SELL (STOP_LOSS_FULL)
//   - unrealized P&L at or below TrimThresholdPct: REDUCE by
//     current weight * TrimFraction (STOP_LOSS)
//
// Positions whose unrealized P&L is NaN cannot be evaluated; their symbols
// are returned in skipped so the caller can surface a warning instead of
// aborting the rebalance. Output order is deterministic (symbol ascending).
func Evaluate(positions []domain.Position, cfg Config) (intents []domain.TradeIntent, skipped []string) {
	sorted := make([]domain.Position, len(positions))
	copy(sorted, positions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	for _, pos := range sorted {
		if math.IsNaN(pos.UnrealizedPnLPct) {
			skipped = append(skipped, pos.Symbol)
			continue
		}

		switch {
		case pos.UnrealizedPnLPct <= cfg.ExitThresholdPct:
			intents = append(intents, domain.TradeIntent{
				Symbol:      pos.Symbol,
				Action:      domain.ActionSell,
				TargetDelta: -pos.Weight,
				Reason:      domain.ReasonStopLossFull,
			})

		case pos.UnrealizedPnLPct <= cfg.TrimThresholdPct:
			intents = append(intents, domain.TradeIntent{
				Symbol:      pos.Symbol,
				Action:      domain.ActionReduce,
				TargetDelta: -(pos.Weight * cfg.TrimFraction),
				Reason:      domain.ReasonStopLoss,
			})
		}
	}

	return intents, skipped
}
