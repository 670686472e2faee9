package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Holding is a raw ledger row: quantity and cost basis, no market data
type Holding struct {
	Symbol      string
	Quantity    float64
	AverageCost float64
}

// PositionRepository handles position ledger operations
type PositionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}
}

// GetAll returns all held positions
func (r *PositionRepository) GetAll() ([]Holding, error) {
	rows, err := r.db.Query("SELECT symbol, quantity, average_cost FROM positions WHERE quantity > 0")
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var holdings []Holding
	for rows.Next() {
		var h Holding
		if err := rows.Scan(&h.Symbol, &h.Quantity, &h.AverageCost); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return holdings, nil
}

// Get returns a single holding, or nil when the symbol is not held
func (r *PositionRepository) Get(symbol string) (*Holding, error) {
	var h Holding
	err := r.db.QueryRow(
		"SELECT symbol, quantity, average_cost FROM positions WHERE symbol = ?", symbol,
	).Scan(&h.Symbol, &h.Quantity, &h.AverageCost)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query position %s: %w", symbol, err)
	}
	return &h, nil
}

// ApplyBuy increases a holding, blending the cost basis
func (r *PositionRepository) ApplyBuy(symbol string, quantity, price float64) error {
	existing, err := r.Get(symbol)
	if err != nil {
		return err
	}

	newQuantity := quantity
	newCost := price
	if existing != nil {
		newQuantity = existing.Quantity + quantity
		newCost = (existing.Quantity*existing.AverageCost + quantity*price) / newQuantity
	}

	_, err = r.db.Exec(`
		INSERT INTO positions (symbol, quantity, average_cost, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			quantity = excluded.quantity,
			average_cost = excluded.average_cost,
			last_updated = excluded.last_updated
	`, symbol, newQuantity, newCost, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to apply buy for %s: %w", symbol, err)
	}

	return nil
}

// ApplySell reduces or closes a holding. Cost basis is unchanged on partial
// sells; the row is removed when the position closes.
func (r *PositionRepository) ApplySell(symbol string, quantity float64) error {
	existing, err := r.Get(symbol)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("cannot sell %s: no position held", symbol)
	}
	if quantity > existing.Quantity+1e-9 {
		return fmt.Errorf("cannot sell %.2f of %s: only %.2f held", quantity, symbol, existing.Quantity)
	}

	remaining := existing.Quantity - quantity
	if remaining <= 1e-9 {
		if _, err := r.db.Exec("DELETE FROM positions WHERE symbol = ?", symbol); err != nil {
			return fmt.Errorf("failed to close position %s: %w", symbol, err)
		}
		return nil
	}

	_, err = r.db.Exec(
		"UPDATE positions SET quantity = ?, last_updated = ? WHERE symbol = ?",
		remaining, time.Now().UTC().Format(time.RFC3339), symbol,
	)
	if err != nil {
		return fmt.Errorf("failed to reduce position %s: %w", symbol, err)
	}

	return nil
}
