package allocation

import (
	"math"
	"reflect"
	"testing"

	"github.com/aristath/rotation-trader/internal/domain"
)

func TestAllocate_ProportionalWeights(t *testing.T) {
	cfg := Config{MaxSlots: 5, MaxWeightPerSlot: 0.20}

	candidates := []domain.Candidate{
		{Symbol: "A", Score: 2.0},
		{Symbol: "B", Score: 1.0},
		{Symbol: "C", Score: -0.5},
	}

	targets := Allocate(candidates, cfg)

	if len(targets) != 2 {
		t.Fatalf("Expected 2 targets, got %d", len(targets))
	}

	if math.Abs(targets["A"].Weight-0.20) > 1e-9 {
		t.Errorf("Top candidate should get the full slot weight, got %v", targets["A"].Weight)
	}
	if math.Abs(targets["B"].Weight-0.10) > 1e-9 {
		t.Errorf("Expected B weight 0.10 (half of top score), got %v", targets["B"].Weight)
	}
	if _, ok := targets["C"]; ok {
		t.Errorf("Negative-score candidate should be excluded")
	}
}

func TestAllocate_Bounds(t *testing.T) {
	cfg := Config{MaxSlots: 3, MaxWeightPerSlot: 0.20}

	candidates := []domain.Candidate{
		{Symbol: "A", Score: 5.0},
		{Symbol: "B", Score: 4.0},
		{Symbol: "C", Score: 3.0},
		{Symbol: "D", Score: 2.0},
		{Symbol: "E", Score: 1.0},
	}

	targets := Allocate(candidates, cfg)

	if len(targets) > cfg.MaxSlots {
		t.Fatalf("Selected %d instruments, max is %d", len(targets), cfg.MaxSlots)
	}

	sum := 0.0
	for symbol, tw := range targets {
		if tw.Weight > cfg.MaxWeightPerSlot+1e-9 {
			t.Errorf("%s weight %v exceeds per-slot cap %v", symbol, tw.Weight, cfg.MaxWeightPerSlot)
		}
		if tw.Weight < 0 {
			t.Errorf("%s has negative weight %v", symbol, tw.Weight)
		}
		sum += tw.Weight
	}

	if cap := float64(cfg.MaxSlots) * cfg.MaxWeightPerSlot; sum > cap+1e-9 {
		t.Errorf("Total weight %v exceeds %v", sum, cap)
	}

	if _, ok := targets["D"]; ok {
		t.Errorf("Candidate outside the top %d slots should not be selected", cfg.MaxSlots)
	}
}

func TestAllocate_EqualScores(t *testing.T) {
	cfg := Config{MaxSlots: 5, MaxWeightPerSlot: 0.20}

	candidates := []domain.Candidate{
		{Symbol: "A", Score: 1.5},
		{Symbol: "B", Score: 1.5},
		{Symbol: "C", Score: 1.5},
	}

	targets := Allocate(candidates, cfg)

	for symbol, tw := range targets {
		if math.Abs(tw.Weight-0.20) > 1e-9 {
			t.Errorf("Equal scores should all receive the cap, %s got %v", symbol, tw.Weight)
		}
	}
}

func TestAllocate_TieBreakDeterministic(t *testing.T) {
	cfg := Config{MaxSlots: 1, MaxWeightPerSlot: 0.20}

	// Two candidates with identical scores compete for one slot; the
	// lexicographically smaller symbol must win every time.
	forward := []domain.Candidate{
		{Symbol: "AAA", Score: 1.0},
		{Symbol: "BBB", Score: 1.0},
	}
	reversed := []domain.Candidate{
		{Symbol: "BBB", Score: 1.0},
		{Symbol: "AAA", Score: 1.0},
	}

	first := Allocate(forward, cfg)
	second := Allocate(reversed, cfg)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Allocation depends on input order: %v vs %v", first, second)
	}
	if _, ok := first["AAA"]; !ok {
		t.Errorf("Tie should break by symbol ascending, got %v", first)
	}
}

func TestAllocate_Idempotent(t *testing.T) {
	cfg := Config{MaxSlots: 5, MaxWeightPerSlot: 0.20}

	candidates := []domain.Candidate{
		{Symbol: "A", Score: 3.2},
		{Symbol: "B", Score: 1.7},
		{Symbol: "C", Score: 0.4},
	}

	first := Allocate(candidates, cfg)
	second := Allocate(candidates, cfg)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Repeated allocation differs: %v vs %v", first, second)
	}
}

func TestAllocate_IneligibleScores(t *testing.T) {
	cfg := Config{MaxSlots: 5, MaxWeightPerSlot: 0.20}

	tests := []struct {
		name       string
		candidates []domain.Candidate
		wantLen    int
	}{
		{
			name:       "empty input",
			candidates: nil,
			wantLen:    0,
		},
		{
			name: "all zero or negative",
			candidates: []domain.Candidate{
				{Symbol: "A", Score: 0},
				{Symbol: "B", Score: -1.2},
			},
			wantLen: 0,
		},
		{
			name: "NaN excluded",
			candidates: []domain.Candidate{
				{Symbol: "A", Score: math.NaN()},
				{Symbol: "B", Score: 1.0},
			},
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets := Allocate(tt.candidates, cfg)
			if len(targets) != tt.wantLen {
				t.Errorf("Expected %d targets, got %d: %v", tt.wantLen, len(targets), targets)
			}
			if _, ok := targets["A"]; ok && tt.wantLen == 1 {
				t.Errorf("NaN-scored candidate must not be selected")
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid policy",
			cfg:     Config{MaxSlots: 5, MaxWeightPerSlot: 0.20},
			wantErr: false,
		},
		{
			name:    "full allocation allowed",
			cfg:     Config{MaxSlots: 4, MaxWeightPerSlot: 0.25},
			wantErr: false,
		},
		{
			name:    "zero slots",
			cfg:     Config{MaxSlots: 0, MaxWeightPerSlot: 0.20},
			wantErr: true,
		},
		{
			name:    "zero weight",
			cfg:     Config{MaxSlots: 5, MaxWeightPerSlot: 0},
			wantErr: true,
		},
		{
			name:    "weight above one",
			cfg:     Config{MaxSlots: 1, MaxWeightPerSlot: 1.5},
			wantErr: true,
		},
		{
			name:    "over-allocated portfolio",
			cfg:     Config{MaxSlots: 6, MaxWeightPerSlot: 0.20},
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
