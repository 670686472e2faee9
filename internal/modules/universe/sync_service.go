package universe

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/clients/marketdata"
	"github.com/aristath/rotation-trader/internal/events"
)

// SyncService keeps the local candle cache current for the active universe
type SyncService struct {
	securities *SecurityRepository
	candles    *CandleRepository
	client     *marketdata.Client
	events     *events.Manager
	lookback   int // days of history to backfill for new symbols
	log        zerolog.Logger
}

// NewSyncService creates a new candle sync service
func NewSyncService(
	securities *SecurityRepository,
	candles *CandleRepository,
	client *marketdata.Client,
	eventManager *events.Manager,
	lookbackDays int,
	log zerolog.Logger,
) *SyncService {
	return &SyncService{
		securities: securities,
		candles:    candles,
		client:     client,
		events:     eventManager,
		lookback:   lookbackDays,
		log:        log.With().Str("service", "candle_sync").Logger(),
	}
}

// SyncAll refreshes candles for every active security. A symbol whose cache
// is already current is skipped; a failed fetch is logged and does not stop
// the rest of the universe from syncing.
func (s *SyncService) SyncAll(ctx context.Context) error {
	securities, err := s.securities.GetActive()
	if err != nil {
		return fmt.Errorf("failed to load active securities: %w", err)
	}

	now := time.Now().UTC()
	synced := 0
	failed := 0

	for _, sec := range securities {
		if err := s.syncSymbol(ctx, sec.Symbol, now); err != nil {
			s.log.Warn().Err(err).Str("symbol", sec.Symbol).Msg("Candle sync failed")
			failed++
			continue
		}
		synced++
	}

	s.log.Info().Int("synced", synced).Int("failed", failed).Msg("Candle sync completed")
	s.events.Emit(events.CandleSyncComplete, "universe", map[string]interface{}{
		"synced": synced,
		"failed": failed,
	})

	if synced == 0 && failed > 0 {
		return fmt.Errorf("candle sync failed for all %d symbols", failed)
	}
	return nil
}

func (s *SyncService) syncSymbol(ctx context.Context, symbol string, now time.Time) error {
	latest, err := s.candles.LatestDate(symbol)
	if err != nil {
		return err
	}

	// Backfill the full lookback for new symbols, otherwise fetch only the
	// gap since the newest cached bar.
	start := now.AddDate(0, 0, -s.lookback)
	if !latest.IsZero() {
		if !latest.Before(now.AddDate(0, 0, -1)) {
			return nil // cache is current
		}
		start = latest.AddDate(0, 0, 1)
	}

	candles, err := s.client.GetDailyCandles(ctx, symbol, start, now)
	if err != nil {
		return err
	}

	return s.candles.Upsert(candles)
}
