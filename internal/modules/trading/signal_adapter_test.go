package trading

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/domain"
	"github.com/aristath/rotation-trader/internal/modules/portfolio"
)

type fakePriceSource struct {
	prices map[string]float64
}

func (f *fakePriceSource) LatestClose(symbol string, asOf time.Time) (float64, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return 0, errors.New("no candles")
	}
	return price, nil
}

func testSnapshot() *portfolio.Snapshot {
	return &portfolio.Snapshot{
		AsOf:       time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		TotalValue: 20000,
		Positions: map[string]domain.Position{
			"A": {Symbol: "A", Quantity: 40, Weight: 0.20},
			"B": {Symbol: "B", Quantity: 30, Weight: 0.15},
		},
	}
}

func TestToSignals_SellClosesFullQuantity(t *testing.T) {
	adapter := NewSignalAdapter(&fakePriceSource{prices: map[string]float64{"A": 100}}, zerolog.Nop())

	intents := []domain.TradeIntent{
		{Symbol: "A", Action: domain.ActionSell, TargetDelta: -0.20, Reason: domain.ReasonStopLossFull},
	}

	signals := adapter.ToSignals(intents, testSnapshot())

	if len(signals) != 1 {
		t.Fatalf("Expected 1 signal, got %d", len(signals))
	}
	if signals[0].Direction != -1 {
		t.Errorf("Expected sell direction, got %d", signals[0].Direction)
	}
	if signals[0].Size != 40 {
		t.Errorf("Sell should close the full 40 shares, got %v", signals[0].Size)
	}
	if signals[0].Reason != domain.ReasonStopLossFull {
		t.Errorf("Reason should pass through, got %s", signals[0].Reason)
	}
}

func TestToSignals_ReduceSizesAgainstEquity(t *testing.T) {
	adapter := NewSignalAdapter(&fakePriceSource{prices: map[string]float64{"A": 100}}, zerolog.Nop())

	intents := []domain.TradeIntent{
		{Symbol: "A", Action: domain.ActionReduce, TargetDelta: -0.10, Reason: domain.ReasonStopLoss},
	}

	signals := adapter.ToSignals(intents, testSnapshot())

	if len(signals) != 1 {
		t.Fatalf("Expected 1 signal, got %d", len(signals))
	}
	// 0.10 * 20000 / 100 = 20 shares
	if signals[0].Size != 20 {
		t.Errorf("Expected 20 shares, got %v", signals[0].Size)
	}
}

func TestToSignals_ReduceCappedAtHolding(t *testing.T) {
	adapter := NewSignalAdapter(&fakePriceSource{prices: map[string]float64{"B": 10}}, zerolog.Nop())

	// 0.50 * 20000 / 10 = 1000 shares, far above the 30 held
	intents := []domain.TradeIntent{
		{Symbol: "B", Action: domain.ActionReduce, TargetDelta: -0.50, Reason: domain.ReasonStopLoss},
	}

	signals := adapter.ToSignals(intents, testSnapshot())

	if len(signals) != 1 {
		t.Fatalf("Expected 1 signal, got %d", len(signals))
	}
	if signals[0].Size != 30 {
		t.Errorf("Reduce must never exceed the held quantity, got %v", signals[0].Size)
	}
}

func TestToSignals_BuyWholeShares(t *testing.T) {
	adapter := NewSignalAdapter(&fakePriceSource{prices: map[string]float64{"C": 33}}, zerolog.Nop())

	intents := []domain.TradeIntent{
		{Symbol: "C", Action: domain.ActionBuy, TargetDelta: 0.10, Reason: domain.ReasonRebalance},
	}

	signals := adapter.ToSignals(intents, testSnapshot())

	if len(signals) != 1 {
		t.Fatalf("Expected 1 signal, got %d", len(signals))
	}
	// 0.10 * 20000 / 33 = 60.6 -> 60 whole shares
	if signals[0].Size != 60 {
		t.Errorf("Expected 60 whole shares, got %v", signals[0].Size)
	}
	if signals[0].Direction != 1 {
		t.Errorf("Expected buy direction, got %d", signals[0].Direction)
	}
}

func TestToSignals_UnresolvablePriceDropped(t *testing.T) {
	adapter := NewSignalAdapter(&fakePriceSource{prices: map[string]float64{"A": 100}}, zerolog.Nop())

	intents := []domain.TradeIntent{
		{Symbol: "NOPRICE", Action: domain.ActionBuy, TargetDelta: 0.10, Reason: domain.ReasonRebalance},
		{Symbol: "A", Action: domain.ActionSell, TargetDelta: -0.20, Reason: domain.ReasonRankExit},
	}

	signals := adapter.ToSignals(intents, testSnapshot())

	if len(signals) != 1 {
		t.Fatalf("Unpriceable intent should be dropped, got %v", signals)
	}
	if signals[0].Symbol != "A" {
		t.Errorf("Expected the priced intent to survive, got %s", signals[0].Symbol)
	}
}

func TestToSignals_PreservesSellBeforeBuyOrder(t *testing.T) {
	adapter := NewSignalAdapter(&fakePriceSource{prices: map[string]float64{
		"A": 100, "B": 50, "C": 25,
	}}, zerolog.Nop())

	intents := []domain.TradeIntent{
		{Symbol: "A", Action: domain.ActionSell, TargetDelta: -0.20, Reason: domain.ReasonRankExit},
		{Symbol: "B", Action: domain.ActionReduce, TargetDelta: -0.05, Reason: domain.ReasonRebalance},
		{Symbol: "C", Action: domain.ActionBuy, TargetDelta: 0.10, Reason: domain.ReasonRebalance},
	}

	signals := adapter.ToSignals(intents, testSnapshot())

	if len(signals) != 3 {
		t.Fatalf("Expected 3 signals, got %d", len(signals))
	}

	sawBuy := false
	for _, sig := range signals {
		if sig.Direction == 1 {
			sawBuy = true
		}
		if sig.Direction == -1 && sawBuy {
			t.Errorf("Sell signal after a buy signal: %v", signals)
		}
	}
}
