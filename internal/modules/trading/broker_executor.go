package trading

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/clients/broker"
	"github.com/aristath/rotation-trader/internal/domain"
	"github.com/aristath/rotation-trader/internal/modules/portfolio"
)

// BrokerExecutor routes signals to the broker gateway and mirrors confirmed
// fills into the local ledger. Used in live mode.
type BrokerExecutor struct {
	client    *broker.Client
	positions *portfolio.PositionRepository
	account   *portfolio.AccountRepository
	trades    *TradeRepository
	log       zerolog.Logger
}

// NewBrokerExecutor creates a new broker executor
func NewBrokerExecutor(
	client *broker.Client,
	positions *portfolio.PositionRepository,
	account *portfolio.AccountRepository,
	trades *TradeRepository,
	log zerolog.Logger,
) *BrokerExecutor {
	return &BrokerExecutor{
		client:    client,
		positions: positions,
		account:   account,
		trades:    trades,
		log:       log.With().Str("component", "broker_executor").Logger(),
	}
}

// Execute places each order in sequence, waiting for the gateway's fill
// confirmation before moving on. A failed sell-side order aborts the batch
// so no buy runs against unreleased cash.
func (e *BrokerExecutor) Execute(signals []domain.Signal, asOf time.Time) error {
	for _, sig := range signals {
		side := "SELL"
		if sig.Direction == 1 {
			side = "BUY"
		}

		result, err := e.client.PlaceOrder(sig.Symbol, side, sig.Size)
		if err != nil {
			if sig.Direction == -1 {
				return fmt.Errorf("sell order for %s failed, aborting batch: %w", sig.Symbol, err)
			}
			e.log.Error().Err(err).Str("symbol", sig.Symbol).Msg("Buy order failed, continuing")
			continue
		}

		fillPrice := result.Price
		if fillPrice <= 0 {
			fillPrice = sig.Price
		}

		if err := e.recordFill(sig, side, result.Quantity, fillPrice, asOf); err != nil {
			// The order went through; a bookkeeping failure must not
			// abort the remaining orders.
			e.log.Warn().Err(err).Str("symbol", sig.Symbol).Msg("Order placed but ledger update failed")
			continue
		}

		e.log.Info().
			Str("symbol", sig.Symbol).
			Str("side", side).
			Str("order_id", result.OrderID).
			Float64("quantity", result.Quantity).
			Float64("price", fillPrice).
			Msg("Order executed")
	}

	return nil
}

func (e *BrokerExecutor) recordFill(sig domain.Signal, side string, quantity, price float64, asOf time.Time) error {
	value := quantity * price

	if sig.Direction == -1 {
		if err := e.positions.ApplySell(sig.Symbol, quantity); err != nil {
			return err
		}
		if err := e.account.AdjustCash(value); err != nil {
			return err
		}
	} else {
		if err := e.positions.ApplyBuy(sig.Symbol, quantity, price); err != nil {
			return err
		}
		if err := e.account.AdjustCash(-value); err != nil {
			return err
		}
	}

	return e.trades.Record(domain.Trade{
		Symbol:     sig.Symbol,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Reason:     sig.Reason,
		ExecutedAt: asOf,
	})
}
