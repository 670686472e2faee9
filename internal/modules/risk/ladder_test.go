package risk

import (
	"math"
	"testing"

	"github.com/aristath/rotation-trader/internal/domain"
)

func defaultLadder() Config {
	return Config{
		TrimThresholdPct: -0.05,
		TrimFraction:     0.5,
		ExitThresholdPct: -0.15,
	}
}

func TestEvaluate_FullExit(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "A", Weight: 0.20, UnrealizedPnLPct: -0.16},
		{Symbol: "B", Weight: 0.15, UnrealizedPnLPct: 0.03},
	}

	intents, skipped := Evaluate(positions, defaultLadder())

	if len(skipped) != 0 {
		t.Errorf("Expected no skipped positions, got %v", skipped)
	}
	if len(intents) != 1 {
		t.Fatalf("Expected exactly 1 intent, got %d: %v", len(intents), intents)
	}

	intent := intents[0]
	if intent.Symbol != "A" {
		t.Errorf("Expected intent for A, got %s", intent.Symbol)
	}
	if intent.Action != domain.ActionSell {
		t.Errorf("Expected SELL, got %s", intent.Action)
	}
	if intent.Reason != domain.ReasonStopLossFull {
		t.Errorf("Expected STOP_LOSS_FULL, got %s", intent.Reason)
	}
	if math.Abs(intent.TargetDelta-(-0.20)) > 1e-9 {
		t.Errorf("Full exit should release the entire weight, got %v", intent.TargetDelta)
	}
}

func TestEvaluate_Trim(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "A", Weight: 0.20, UnrealizedPnLPct: -0.06},
	}

	intents, _ := Evaluate(positions, defaultLadder())

	if len(intents) != 1 {
		t.Fatalf("Expected exactly 1 intent, got %d", len(intents))
	}

	intent := intents[0]
	if intent.Action != domain.ActionReduce {
		t.Errorf("Expected REDUCE, got %s", intent.Action)
	}
	if intent.Reason != domain.ReasonStopLoss {
		t.Errorf("Expected STOP_LOSS, got %s", intent.Reason)
	}
	if math.Abs(intent.TargetDelta-(-0.10)) > 1e-9 {
		t.Errorf("Trim should release weight * fraction = 0.10, got %v", intent.TargetDelta)
	}
}

func TestEvaluate_Thresholds(t *testing.T) {
	cfg := defaultLadder()

	tests := []struct {
		name       string
		pnlPct     float64
		wantReason domain.Reason
		wantNone   bool
	}{
		{name: "above trim", pnlPct: -0.049, wantNone: true},
		{name: "exactly at trim", pnlPct: -0.05, wantReason: domain.ReasonStopLoss},
		{name: "between tiers", pnlPct: -0.10, wantReason: domain.ReasonStopLoss},
		{name: "exactly at exit", pnlPct: -0.15, wantReason: domain.ReasonStopLossFull},
		{name: "below exit", pnlPct: -0.40, wantReason: domain.ReasonStopLossFull},
		{name: "profitable", pnlPct: 0.12, wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := []domain.Position{
				{Symbol: "X", Weight: 0.20, UnrealizedPnLPct: tt.pnlPct},
			}

			intents, _ := Evaluate(positions, cfg)

			if tt.wantNone {
				if len(intents) != 0 {
					t.Errorf("Expected no intents at %.2f%%, got %v", tt.pnlPct*100, intents)
				}
				return
			}

			if len(intents) != 1 {
				t.Fatalf("Expected 1 intent at %.2f%%, got %d", tt.pnlPct*100, len(intents))
			}
			if intents[0].Reason != tt.wantReason {
				t.Errorf("Expected reason %s, got %s", tt.wantReason, intents[0].Reason)
			}
		})
	}
}

func TestEvaluate_NaNSkipped(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "A", Weight: 0.20, UnrealizedPnLPct: math.NaN()},
		{Symbol: "B", Weight: 0.10, UnrealizedPnLPct: -0.20},
	}

	intents, skipped := Evaluate(positions, defaultLadder())

	if len(skipped) != 1 || skipped[0] != "A" {
		t.Errorf("Position without usable P&L should be skipped, got %v", skipped)
	}
	if len(intents) != 1 || intents[0].Symbol != "B" {
		t.Errorf("Evaluable positions should still produce intents, got %v", intents)
	}
}

func TestEvaluate_DeterministicOrder(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "C", Weight: 0.10, UnrealizedPnLPct: -0.20},
		{Symbol: "A", Weight: 0.10, UnrealizedPnLPct: -0.20},
		{Symbol: "B", Weight: 0.10, UnrealizedPnLPct: -0.20},
	}

	intents, _ := Evaluate(positions, defaultLadder())

	want := []string{"A", "B", "C"}
	if len(intents) != len(want) {
		t.Fatalf("Expected %d intents, got %d", len(want), len(intents))
	}
	for i, symbol := range want {
		if intents[i].Symbol != symbol {
			t.Errorf("Position %d: expected %s, got %s", i, symbol, intents[i].Symbol)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid ladder",
			cfg:     Config{TrimThresholdPct: -0.05, TrimFraction: 0.5, ExitThresholdPct: -0.15},
			wantErr: false,
		},
		{
			name:    "full trim allowed",
			cfg:     Config{TrimThresholdPct: -0.05, TrimFraction: 1.0, ExitThresholdPct: -0.15},
			wantErr: false,
		},
		{
			name:    "positive trim threshold",
			cfg:     Config{TrimThresholdPct: 0.05, TrimFraction: 0.5, ExitThresholdPct: -0.15},
			wantErr: true,
		},
		{
			name:    "positive exit threshold",
			cfg:     Config{TrimThresholdPct: -0.05, TrimFraction: 0.5, ExitThresholdPct: 0.15},
			wantErr: true,
		},
		{
			name:    "exit shallower than trim",
			cfg:     Config{TrimThresholdPct: -0.15, TrimFraction: 0.5, ExitThresholdPct: -0.05},
			wantErr: true,
		},
		{
			name:    "zero trim fraction",
			cfg:     Config{TrimThresholdPct: -0.05, TrimFraction: 0, ExitThresholdPct: -0.15},
			wantErr: true,
		},
		{
			name:    "trim fraction above one",
			cfg:     Config{TrimThresholdPct: -0.05, TrimFraction: 1.1, ExitThresholdPct: -0.15},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
