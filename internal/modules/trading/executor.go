package trading

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/domain"
	"github.com/aristath/rotation-trader/internal/modules/portfolio"
)

// Executor settles an ordered signal batch. Implementations must process
// signals strictly in the given order: every sell must settle before the
// first buy is attempted.
type Executor interface {
	Execute(signals []domain.Signal, asOf time.Time) error
}

// LedgerExecutor settles signals directly against the local SQLite ledger.
// Used in backtest mode, where fills are assumed at the signal price.
type LedgerExecutor struct {
	positions *portfolio.PositionRepository
	account   *portfolio.AccountRepository
	trades    *TradeRepository
	log       zerolog.Logger
}

// NewLedgerExecutor creates a new ledger executor
func NewLedgerExecutor(
	positions *portfolio.PositionRepository,
	account *portfolio.AccountRepository,
	trades *TradeRepository,
	log zerolog.Logger,
) *LedgerExecutor {
	return &LedgerExecutor{
		positions: positions,
		account:   account,
		trades:    trades,
		log:       log.With().Str("component", "ledger_executor").Logger(),
	}
}

// Execute applies each signal to the ledger in order. A failed sell aborts
// the batch before any buy runs, so the portfolio never passes through an
// over-invested state.
func (e *LedgerExecutor) Execute(signals []domain.Signal, asOf time.Time) error {
	for _, sig := range signals {
		if err := e.executeOne(sig, asOf); err != nil {
			return fmt.Errorf("execution aborted at %s: %w", sig.Symbol, err)
		}
	}
	return nil
}

func (e *LedgerExecutor) executeOne(sig domain.Signal, asOf time.Time) error {
	value := sig.Size * sig.Price

	switch sig.Direction {
	case -1:
		if err := e.positions.ApplySell(sig.Symbol, sig.Size); err != nil {
			return err
		}
		if err := e.account.AdjustCash(value); err != nil {
			return err
		}

	case 1:
		cash, err := e.account.GetCash()
		if err != nil {
			return err
		}
		if value > cash {
			// Skip, don't fail: earlier sells may have freed less cash
			// than the plan assumed (rounding to whole shares).
			e.log.Warn().
				Str("symbol", sig.Symbol).
				Float64("required", value).
				Float64("cash", cash).
				Msg("Insufficient cash for buy, skipping")
			return nil
		}
		if err := e.positions.ApplyBuy(sig.Symbol, sig.Size, sig.Price); err != nil {
			return err
		}
		if err := e.account.AdjustCash(-value); err != nil {
			return err
		}

	default:
		return nil
	}

	side := "SELL"
	if sig.Direction == 1 {
		side = "BUY"
	}

	e.log.Info().
		Str("symbol", sig.Symbol).
		Str("side", side).
		Float64("quantity", sig.Size).
		Float64("price", sig.Price).
		Str("reason", string(sig.Reason)).
		Msg("Trade settled")

	return e.trades.Record(domain.Trade{
		Symbol:     sig.Symbol,
		Side:       side,
		Quantity:   sig.Size,
		Price:      sig.Price,
		Reason:     sig.Reason,
		ExecutedAt: asOf,
	})
}
