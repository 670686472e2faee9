package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/domain"
)

const dateLayout = "2006-01-02"

// CandleRepository handles the daily candle cache
type CandleRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewCandleRepository creates a new candle repository
func NewCandleRepository(db *sql.DB, log zerolog.Logger) *CandleRepository {
	return &CandleRepository{
		db:  db,
		log: log.With().Str("repo", "candle").Logger(),
	}
}

// History returns up to `days` daily candles for a symbol ending at asOf,
// ordered oldest first.
func (r *CandleRepository) History(symbol string, asOf time.Time, days int) ([]domain.Candle, error) {
	rows, err := r.db.Query(`
		SELECT symbol, date, open, high, low, close, volume
		FROM (
			SELECT symbol, date, open, high, low, close, volume
			FROM candles
			WHERE symbol = ? AND date <= ?
			ORDER BY date DESC
			LIMIT ?
		)
		ORDER BY date ASC
	`, symbol, asOf.Format(dateLayout), days)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles for %s: %w", symbol, err)
	}
	defer rows.Close()

	var candles []domain.Candle
	for rows.Next() {
		candle, err := scanCandle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candles = append(candles, candle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}

// LatestClose returns the most recent close at or before asOf.
// Returns sql.ErrNoRows if the symbol has no candles yet.
func (r *CandleRepository) LatestClose(symbol string, asOf time.Time) (float64, error) {
	var close float64
	err := r.db.QueryRow(`
		SELECT close FROM candles
		WHERE symbol = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`, symbol, asOf.Format(dateLayout)).Scan(&close)
	if err != nil {
		return 0, err
	}
	return close, nil
}

// LatestDate returns the date of the newest cached candle for a symbol, or
// the zero time when the cache is empty.
func (r *CandleRepository) LatestDate(symbol string) (time.Time, error) {
	var date string
	err := r.db.QueryRow(`
		SELECT date FROM candles
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT 1
	`, symbol).Scan(&date)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest candle date: %w", err)
	}

	return time.Parse(dateLayout, date)
}

// Upsert stores a batch of candles, replacing existing rows for the same
// symbol and date.
func (r *CandleRepository) Upsert(candles []domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO candles (symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare candle upsert: %w", err)
	}
	defer stmt.Close()

	for _, candle := range candles {
		if _, err := stmt.Exec(
			candle.Symbol,
			candle.Date.Format(dateLayout),
			candle.Open,
			candle.High,
			candle.Low,
			candle.Close,
			candle.Volume,
		); err != nil {
			return fmt.Errorf("failed to upsert candle %s/%s: %w", candle.Symbol, candle.Date.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit candle upsert: %w", err)
	}

	return nil
}

func scanCandle(rows *sql.Rows) (domain.Candle, error) {
	var candle domain.Candle
	var date string
	if err := rows.Scan(
		&candle.Symbol,
		&date,
		&candle.Open,
		&candle.High,
		&candle.Low,
		&candle.Close,
		&candle.Volume,
	); err != nil {
		return domain.Candle{}, err
	}

	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("invalid candle date %q: %w", date, err)
	}
	candle.Date = parsed

	return candle, nil
}
