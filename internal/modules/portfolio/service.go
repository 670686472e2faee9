package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/domain"
)

// PriceSource provides the latest known close for an instrument
type PriceSource interface {
	LatestClose(symbol string, asOf time.Time) (float64, error)
}

// Snapshot is an immutable view of the portfolio for one evaluation date.
// Warnings lists symbols whose price data was unusable; their positions
// carry a NaN unrealized P&L and are skipped by the risk ladder.
type Snapshot struct {
	AsOf        time.Time                  `json:"as_of"`
	Positions   map[string]domain.Position `json:"positions"`
	TotalValue  float64                    `json:"total_value"`
	CashBalance float64                    `json:"cash_balance"`
	Warnings    []string                   `json:"warnings,omitempty"`
}

// Service builds portfolio snapshots from the ledger and market prices
type Service struct {
	positions *PositionRepository
	account   *AccountRepository
	prices    PriceSource
	log       zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(
	positions *PositionRepository,
	account *AccountRepository,
	prices PriceSource,
	log zerolog.Logger,
) *Service {
	return &Service{
		positions: positions,
		account:   account,
		prices:    prices,
		log:       log.With().Str("service", "portfolio").Logger(),
	}
}

// Snapshot re-derives weight and unrealized P&L for every held position from
// the latest prices. A position with no usable price is valued at cost and
// flagged in Warnings rather than failing the whole snapshot.
func (s *Service) Snapshot(asOf time.Time) (*Snapshot, error) {
	holdings, err := s.positions.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	cash, err := s.account.GetCash()
	if err != nil {
		return nil, fmt.Errorf("failed to load cash balance: %w", err)
	}

	snapshot := &Snapshot{
		AsOf:        asOf,
		Positions:   make(map[string]domain.Position, len(holdings)),
		CashBalance: cash,
	}

	totalValue := cash
	for _, h := range holdings {
		pos := domain.Position{
			Symbol:      h.Symbol,
			Quantity:    h.Quantity,
			AverageCost: h.AverageCost,
		}

		price, err := s.prices.LatestClose(h.Symbol, asOf)
		if err != nil || price <= 0 {
			// Value at cost so the weight math stays sane, but mark the
			// P&L unusable so risk evaluation skips it.
			pos.CurrentPrice = 0
			pos.MarketValue = h.Quantity * h.AverageCost
			pos.UnrealizedPnLPct = math.NaN()
			snapshot.Warnings = append(snapshot.Warnings, h.Symbol)
			s.log.Warn().Str("symbol", h.Symbol).Msg("No usable price for position, P&L unavailable")
		} else {
			pos.CurrentPrice = price
			pos.MarketValue = h.Quantity * price
			if h.AverageCost > 0 {
				pos.UnrealizedPnLPct = (price - h.AverageCost) / h.AverageCost
			} else {
				pos.UnrealizedPnLPct = math.NaN()
				snapshot.Warnings = append(snapshot.Warnings, h.Symbol)
			}
		}

		totalValue += pos.MarketValue
		snapshot.Positions[h.Symbol] = pos
	}

	snapshot.TotalValue = totalValue

	// Weights need the final total
	if totalValue > 0 {
		for symbol, pos := range snapshot.Positions {
			pos.Weight = pos.MarketValue / totalValue
			snapshot.Positions[symbol] = pos
		}
	}

	return snapshot, nil
}
