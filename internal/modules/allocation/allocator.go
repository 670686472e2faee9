package allocation

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/rotation-trader/internal/domain"
)

// Config is the immutable allocation policy
type Config struct {
	MaxSlots         int     `toml:"max_slots"`
	MaxWeightPerSlot float64 `toml:"max_weight_per_slot"`
}

// Validate rejects policies that could over-allocate the portfolio.
// Invalid policy is a configuration error, never silently clamped.
func (c Config) Validate() error {
	if c.MaxSlots < 1 {
		return fmt.Errorf("max_slots must be at least 1, got %d", c.MaxSlots)
	}

	if c.MaxWeightPerSlot <= 0 || c.MaxWeightPerSlot > 1 {
		return fmt.Errorf("max_weight_per_slot must be in (0, 1], got %.4f", c.MaxWeightPerSlot)
	}

	if total := float64(c.MaxSlots) * c.MaxWeightPerSlot; total > 1.0+1e-9 {
		return fmt.Errorf("max_slots * max_weight_per_slot = %.2f exceeds 100%% of equity", total)
	}

	return nil
}

// Allocate converts a scored candidate list into bounded target weights.
//
// Rules:
//  1. Only candidates with score > 0 are eligible; NaN scores are ineligible.
//  2. Candidates are ranked by score descending, ties broken by symbol
//     ascending so repeated runs produce identical output.
//  3. The top MaxSlots candidates are selected. The top-ranked candidate
//     receives the full MaxWeightPerSlot; every other selected candidate
//     receives MaxWeightPerSlot * (score / top score).
//
// An empty eligible set returns an empty map: the portfolio holds no
// positions when nothing qualifies.
func Allocate(candidates []domain.Candidate, cfg Config) map[string]domain.TargetWeight {
	eligible := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if math.IsNaN(c.Score) || c.Score <= 0 {
			continue
		}
		eligible = append(eligible, c)
	}

	if len(eligible) == 0 {
		return map[string]domain.TargetWeight{}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Score != eligible[j].Score {
			return eligible[i].Score > eligible[j].Score
		}
		return eligible[i].Symbol < eligible[j].Symbol
	})

	if len(eligible) > cfg.MaxSlots {
		eligible = eligible[:cfg.MaxSlots]
	}

	topScore := eligible[0].Score

	targets := make(map[string]domain.TargetWeight, len(eligible))
	for _, c := range eligible {
		weight := cfg.MaxWeightPerSlot * (c.Score / topScore)
		if weight > cfg.MaxWeightPerSlot {
			weight = cfg.MaxWeightPerSlot
		}
		if weight < 0 {
			weight = 0
		}

		targets[c.Symbol] = domain.TargetWeight{
			Symbol: c.Symbol,
			Weight: weight,
		}
	}

	return targets
}
