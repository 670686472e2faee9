package scoring

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/domain"
)

// CandleSource provides daily candle history for an instrument, newest last
type CandleSource interface {
	History(symbol string, asOf time.Time, days int) ([]domain.Candle, error)
}

// Service scores the rotation universe for one evaluation date
type Service struct {
	candles CandleSource
	cfg     Config
	log     zerolog.Logger
}

// NewService creates a new scoring service
func NewService(candles CandleSource, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		candles: candles,
		cfg:     cfg,
		log:     log.With().Str("service", "scoring").Logger(),
	}
}

// ScoreUniverse computes a momentum score for every instrument in the
// universe. Instruments with missing history or an ineligible (NaN) score
// are dropped, not treated as fatal: the allocator simply never sees them.
func (s *Service) ScoreUniverse(universe []string, asOf time.Time, lookbackDays int) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(universe))

	for _, symbol := range universe {
		history, err := s.candles.History(symbol, asOf, lookbackDays)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to load candle history, skipping")
			continue
		}

		closes := make([]float64, len(history))
		volumes := make([]float64, len(history))
		for i, candle := range history {
			closes[i] = candle.Close
			volumes[i] = candle.Volume
		}

		score := MomentumScore(closes, volumes, s.cfg)
		if math.IsNaN(score) {
			s.log.Debug().Str("symbol", symbol).Msg("Instrument ineligible this cycle")
			continue
		}

		candidates = append(candidates, domain.Candidate{
			Symbol: symbol,
			Score:  score,
		})
	}

	s.log.Info().
		Time("as_of", asOf).
		Int("universe", len(universe)).
		Int("scored", len(candidates)).
		Msg("Universe scored")

	return candidates
}
