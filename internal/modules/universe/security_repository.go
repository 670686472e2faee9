package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/domain"
)

// SecurityRepository handles security database operations
type SecurityRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSecurityRepository creates a new security repository
func NewSecurityRepository(db *sql.DB, log zerolog.Logger) *SecurityRepository {
	return &SecurityRepository{
		db:  db,
		log: log.With().Str("repo", "security").Logger(),
	}
}

// GetActive returns all active securities
func (r *SecurityRepository) GetActive() ([]domain.Security, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, name, exchange, active, last_updated
		FROM securities
		WHERE active = 1
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query securities: %w", err)
	}
	defer rows.Close()

	var securities []domain.Security
	for rows.Next() {
		var sec domain.Security
		var lastUpdated string
		if err := rows.Scan(&sec.ID, &sec.Symbol, &sec.Name, &sec.Exchange, &sec.Active, &lastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan security: %w", err)
		}
		sec.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)
		securities = append(securities, sec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating securities: %w", err)
	}

	return securities, nil
}

// EnsureUniverse inserts any symbols from the configured universe that are
// not in the database yet, and reactivates known ones. Symbols outside the
// universe are deactivated, not deleted, so their trade history stays
// attached.
func (r *SecurityRepository) EnsureUniverse(symbols []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE securities SET active = 0"); err != nil {
		return fmt.Errorf("failed to deactivate securities: %w", err)
	}

	for _, symbol := range symbols {
		_, err := tx.Exec(`
			INSERT INTO securities (symbol, active, last_updated)
			VALUES (?, 1, ?)
			ON CONFLICT(symbol) DO UPDATE SET active = 1, last_updated = excluded.last_updated
		`, symbol, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to upsert security %s: %w", symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit universe update: %w", err)
	}

	r.log.Info().Int("symbols", len(symbols)).Msg("Universe synchronized")
	return nil
}
