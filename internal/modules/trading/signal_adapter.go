package trading

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/domain"
	"github.com/aristath/rotation-trader/internal/modules/portfolio"
)

// PriceSource provides the latest known close for an instrument
type PriceSource interface {
	LatestClose(symbol string, asOf time.Time) (float64, error)
}

// SignalAdapter converts an ordered trade-intent list into the
// direction/price/size signals the execution loop consumes. Intent order is
// preserved, so every sell-side signal still precedes every buy signal.
type SignalAdapter struct {
	prices PriceSource
	log    zerolog.Logger
}

// NewSignalAdapter creates a new signal adapter
func NewSignalAdapter(prices PriceSource, log zerolog.Logger) *SignalAdapter {
	return &SignalAdapter{
		prices: prices,
		log:    log.With().Str("component", "signal_adapter").Logger(),
	}
}

// ToSignals sizes each intent against the snapshot's total equity.
//
//   - SELL closes the full held quantity.
//   - REDUCE sells total_value * |delta| / price shares.
//   - BUY buys total_value * delta / price shares.
//
// Intents whose price cannot be resolved are dropped with a warning; the
// remaining plan stays valid because dropping a trade never reorders the
// sell-before-buy sequence.
func (a *SignalAdapter) ToSignals(
	intents []domain.TradeIntent,
	snapshot *portfolio.Snapshot,
) []domain.Signal {
	signals := make([]domain.Signal, 0, len(intents))

	for _, intent := range intents {
		price, err := a.prices.LatestClose(intent.Symbol, snapshot.AsOf)
		if err != nil || price <= 0 {
			a.log.Warn().
				Str("symbol", intent.Symbol).
				Str("action", string(intent.Action)).
				Msg("No usable price for intent, dropping")
			continue
		}

		var signal domain.Signal
		switch intent.Action {
		case domain.ActionSell:
			pos, held := snapshot.Positions[intent.Symbol]
			if !held || pos.Quantity <= 0 {
				continue
			}
			signal = domain.Signal{
				Symbol:    intent.Symbol,
				Direction: -1,
				Price:     price,
				Size:      pos.Quantity,
				Reason:    intent.Reason,
			}

		case domain.ActionReduce:
			pos, held := snapshot.Positions[intent.Symbol]
			if !held || pos.Quantity <= 0 {
				continue
			}
			size := sizeForWeight(-intent.TargetDelta, snapshot.TotalValue, price)
			if size > pos.Quantity {
				size = pos.Quantity
			}
			if size <= 0 {
				continue
			}
			signal = domain.Signal{
				Symbol:    intent.Symbol,
				Direction: -1,
				Price:     price,
				Size:      size,
				Reason:    intent.Reason,
			}

		case domain.ActionBuy:
			size := sizeForWeight(intent.TargetDelta, snapshot.TotalValue, price)
			if size <= 0 {
				continue
			}
			signal = domain.Signal{
				Symbol:    intent.Symbol,
				Direction: 1,
				Price:     price,
				Size:      size,
				Reason:    intent.Reason,
			}

		default:
			continue
		}

		signals = append(signals, signal)
	}

	return signals
}

// sizeForWeight converts a weight fraction of total equity into whole shares
func sizeForWeight(weight, totalValue, price float64) float64 {
	if weight <= 0 || totalValue <= 0 || price <= 0 {
		return 0
	}
	return float64(int(weight * totalValue / price))
}
