package trading

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/domain"
)

// TradeRepository handles the executed-trade ledger
type TradeRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		db:  db,
		log: log.With().Str("repo", "trade").Logger(),
	}
}

// Record stores an executed trade
func (r *TradeRepository) Record(trade domain.Trade) error {
	_, err := r.db.Exec(`
		INSERT INTO trades (symbol, side, quantity, price, reason, executed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, trade.Symbol, trade.Side, trade.Quantity, trade.Price, string(trade.Reason),
		trade.ExecutedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}
	return nil
}

// GetRecent returns the most recent trades, newest first
func (r *TradeRepository) GetRecent(limit int) ([]domain.Trade, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, side, quantity, price, reason, executed_at
		FROM trades
		ORDER BY executed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var reason, executedAt string
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Side, &t.Quantity, &t.Price, &reason, &executedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.Reason = domain.Reason(reason)
		t.ExecutedAt, _ = time.Parse(time.RFC3339, executedAt)
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}
