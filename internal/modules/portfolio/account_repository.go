package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// AccountRepository tracks the cash balance and the daily portfolio value
// history.
type AccountRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB, log zerolog.Logger) *AccountRepository {
	return &AccountRepository{
		db:  db,
		log: log.With().Str("repo", "account").Logger(),
	}
}

// EnsureCash seeds the cash balance on first run; later runs keep the
// existing balance.
func (r *AccountRepository) EnsureCash(initialCapital float64) error {
	_, err := r.db.Exec(
		"INSERT INTO account (id, cash_balance) VALUES (1, ?) ON CONFLICT(id) DO NOTHING",
		initialCapital,
	)
	if err != nil {
		return fmt.Errorf("failed to seed cash balance: %w", err)
	}
	return nil
}

// GetCash returns the current cash balance
func (r *AccountRepository) GetCash() (float64, error) {
	var cash float64
	err := r.db.QueryRow("SELECT cash_balance FROM account WHERE id = 1").Scan(&cash)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("account not initialized")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query cash balance: %w", err)
	}
	return cash, nil
}

// AdjustCash applies a signed delta to the cash balance
func (r *AccountRepository) AdjustCash(delta float64) error {
	_, err := r.db.Exec("UPDATE account SET cash_balance = cash_balance + ? WHERE id = 1", delta)
	if err != nil {
		return fmt.Errorf("failed to adjust cash balance: %w", err)
	}
	return nil
}

// RecordValue stores the end-of-evaluation portfolio value for one date
func (r *AccountRepository) RecordValue(date time.Time, totalValue, cashBalance float64) error {
	_, err := r.db.Exec(`
		INSERT INTO portfolio_values (date, total_value, cash_balance)
		VALUES (?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_value = excluded.total_value,
			cash_balance = excluded.cash_balance
	`, date.Format("2006-01-02"), totalValue, cashBalance)
	if err != nil {
		return fmt.Errorf("failed to record portfolio value: %w", err)
	}
	return nil
}

// ValueHistory returns the stored portfolio values ordered by date
func (r *AccountRepository) ValueHistory() ([]float64, error) {
	rows, err := r.db.Query("SELECT total_value FROM portfolio_values ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio values: %w", err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio value: %w", err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio values: %w", err)
	}

	return values, nil
}
