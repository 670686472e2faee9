package performance

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/pkg/formulas"
)

// riskFreeRate used for Sharpe calculation (annual, as decimal)
const riskFreeRate = 0.02

// Report summarizes the portfolio's realized performance
type Report struct {
	TotalReturn          float64  `json:"total_return"`
	AnnualizedVolatility float64  `json:"annualized_volatility"`
	SharpeRatio          *float64 `json:"sharpe_ratio,omitempty"`
	MaxDrawdown          *float64 `json:"max_drawdown,omitempty"`
	Observations         int      `json:"observations"`
}

// ValueSource provides the stored daily portfolio value series
type ValueSource interface {
	ValueHistory() ([]float64, error)
}

// Service computes performance metrics over the recorded value history
type Service struct {
	values ValueSource
	log    zerolog.Logger
}

// NewService creates a new performance service
func NewService(values ValueSource, log zerolog.Logger) *Service {
	return &Service{
		values: values,
		log:    log.With().Str("service", "performance").Logger(),
	}
}

// Report computes return, volatility, Sharpe and max drawdown from the
// stored portfolio values. With fewer than two observations only the
// observation count is populated.
func (s *Service) Report() (*Report, error) {
	values, err := s.values.ValueHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to load value history: %w", err)
	}

	report := &Report{Observations: len(values)}
	if len(values) < 2 {
		return report, nil
	}

	first := values[0]
	last := values[len(values)-1]
	if first > 0 {
		report.TotalReturn = (last - first) / first
	}

	returns := formulas.CalculateReturns(values)
	report.AnnualizedVolatility = formulas.AnnualizedVolatility(returns)
	report.SharpeRatio = formulas.CalculateSharpeRatio(returns, riskFreeRate, 252)
	report.MaxDrawdown = formulas.CalculateMaxDrawdown(values)

	return report, nil
}
