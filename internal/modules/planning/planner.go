package planning

import (
	"sort"

	"github.com/aristath/rotation-trader/internal/domain"
)

// weightTolerance is the smallest weight difference worth trading on.
// Differences below it are treated as already on target.
const weightTolerance = 1e-6

// Plan merges the allocator's targets, the risk ladder's overrides and the
// current holdings into one ordered trade-intent list for the execution
// boundary.
//
// Merge rules:
//
//  1. Risk intents come first. A STOP_LOSS_FULL exit is terminal for the
//     cycle: the instrument gets no further intents, including a BUY for a
//     still-ranked instrument.
//  2. Held instruments absent from the targets are sold in full (RANK_EXIT).
//     A full rank exit supersedes a same-cycle stop-loss trim for that
//     instrument, which would otherwise leave part of an unranked position
//     behind.
//  3. Instruments trimmed by the risk ladder keep their trim; the allocator
//     does not resize them again in the same cycle.
//  4. Remaining target instruments are resized toward their target weight:
//     REDUCE when over target, BUY when under (including new entries).
//
// Every SELL/REDUCE is ordered strictly before every BUY so the executed
// sequence never passes through a transiently over-leveraged state. Map
// inputs are iterated in symbol order, so the plan is fully deterministic.
func Plan(
	current map[string]domain.Position,
	targets map[string]domain.TargetWeight,
	riskIntents []domain.TradeIntent,
) []domain.TradeIntent {
	exited := make(map[string]bool)
	trimmed := make(map[string]bool)
	for _, intent := range riskIntents {
		switch intent.Reason {
		case domain.ReasonStopLossFull:
			exited[intent.Symbol] = true
		case domain.ReasonStopLoss:
			trimmed[intent.Symbol] = true
		}
	}

	// Rank exits for held instruments that dropped out of the ranking
	rankExited := make(map[string]bool)
	var rankExits []domain.TradeIntent
	for _, symbol := range sortedPositionSymbols(current) {
		if exited[symbol] {
			continue
		}
		if _, ranked := targets[symbol]; ranked {
			continue
		}

		rankExited[symbol] = true
		rankExits = append(rankExits, domain.TradeIntent{
			Symbol:      symbol,
			Action:      domain.ActionSell,
			TargetDelta: -current[symbol].Weight,
			Reason:      domain.ReasonRankExit,
		})
	}

	var sells []domain.TradeIntent
	for _, intent := range riskIntents {
		// A stop-loss trim on an instrument that is being sold in full
		// anyway is dropped in favour of the full exit.
		if intent.Reason == domain.ReasonStopLoss && rankExited[intent.Symbol] {
			continue
		}
		sells = append(sells, intent)
	}
	sells = append(sells, rankExits...)

	// Resize toward targets: reductions join the sell group, increases and
	// new entries form the buy group.
	var buys []domain.TradeIntent
	for _, symbol := range sortedTargetSymbols(targets) {
		if exited[symbol] || trimmed[symbol] {
			continue
		}

		currentWeight := 0.0
		if pos, held := current[symbol]; held {
			currentWeight = pos.Weight
		}

		delta := targets[symbol].Weight - currentWeight
		switch {
		case delta < -weightTolerance:
			sells = append(sells, domain.TradeIntent{
				Symbol:      symbol,
				Action:      domain.ActionReduce,
				TargetDelta: delta,
				Reason:      domain.ReasonRebalance,
			})

		case delta > weightTolerance:
			buys = append(buys, domain.TradeIntent{
				Symbol:      symbol,
				Action:      domain.ActionBuy,
				TargetDelta: delta,
				Reason:      domain.ReasonRebalance,
			})
		}
	}

	return append(sells, buys...)
}

func sortedPositionSymbols(positions map[string]domain.Position) []string {
	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func sortedTargetSymbols(targets map[string]domain.TargetWeight) []string {
	symbols := make([]string, 0, len(targets))
	for symbol := range targets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
