package formulas

import (
	"math"
	"testing"
)

func TestCalculateReturns(t *testing.T) {
	prices := []float64{100, 110, 99}

	returns := CalculateReturns(prices)

	if len(returns) != 2 {
		t.Fatalf("Expected 2 returns, got %d", len(returns))
	}
	if math.Abs(returns[0]-0.10) > 1e-9 {
		t.Errorf("Expected 0.10, got %v", returns[0])
	}
	if math.Abs(returns[1]-(-0.10)) > 1e-9 {
		t.Errorf("Expected -0.10, got %v", returns[1])
	}
}

func TestCalculateReturns_ShortSeries(t *testing.T) {
	if got := CalculateReturns([]float64{100}); len(got) != 0 {
		t.Errorf("Single price should yield no returns, got %v", got)
	}
	if got := CalculateReturns(nil); len(got) != 0 {
		t.Errorf("Empty series should yield no returns, got %v", got)
	}
}

func TestCalculateMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   *float64
	}{
		{
			name:   "25 percent drawdown",
			values: []float64{100, 120, 90, 110},
			want:   ptr(0.25), // from 120 down to 90
		},
		{
			name:   "monotonic rise",
			values: []float64{100, 110, 120},
			want:   ptr(0.0),
		},
		{
			name:   "insufficient data",
			values: []float64{100},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateMaxDrawdown(tt.values)

			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			if got != nil && math.Abs(*got-*tt.want) > 1e-9 {
				t.Errorf("Expected %v, got %v", *tt.want, *got)
			}
		})
	}
}

func TestCalculateSharpeRatio(t *testing.T) {
	returns := []float64{0.01, -0.005, 0.02, 0.003, -0.001}

	sharpe := CalculateSharpeRatio(returns, 0.02, 252)
	if sharpe == nil {
		t.Fatal("Expected a Sharpe ratio")
	}
	if math.IsNaN(*sharpe) || math.IsInf(*sharpe, 0) {
		t.Errorf("Sharpe should be finite, got %v", *sharpe)
	}
}

func TestCalculateSharpeRatio_Degenerate(t *testing.T) {
	if got := CalculateSharpeRatio([]float64{0.01}, 0.02, 252); got != nil {
		t.Errorf("One observation should yield nil, got %v", *got)
	}
	// Constant returns have zero deviation
	if got := CalculateSharpeRatio([]float64{0.01, 0.01, 0.01}, 0.02, 252); got != nil {
		t.Errorf("Zero-variance returns should yield nil, got %v", *got)
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01}

	vol := AnnualizedVolatility(returns)
	daily := StdDev(returns)

	if math.Abs(vol-daily*math.Sqrt(252)) > 1e-12 {
		t.Errorf("Annualization should scale by sqrt(252), got %v", vol)
	}
	if AnnualizedVolatility(nil) != 0 {
		t.Errorf("Empty returns should yield zero volatility")
	}
}

func ptr(v float64) *float64 {
	return &v
}
