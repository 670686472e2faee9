package rebalancing

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rotation-trader/internal/domain"
	"github.com/aristath/rotation-trader/internal/events"
	"github.com/aristath/rotation-trader/internal/modules/allocation"
	"github.com/aristath/rotation-trader/internal/modules/planning"
	"github.com/aristath/rotation-trader/internal/modules/planning/config"
	"github.com/aristath/rotation-trader/internal/modules/portfolio"
	"github.com/aristath/rotation-trader/internal/modules/risk"
	"github.com/aristath/rotation-trader/internal/modules/scoring"
	"github.com/aristath/rotation-trader/internal/modules/trading"
)

// Result captures one full rebalance evaluation
type Result struct {
	AsOf       time.Time                      `json:"as_of"`
	Candidates []domain.Candidate             `json:"candidates"`
	Targets    map[string]domain.TargetWeight `json:"targets"`
	Intents    []domain.TradeIntent           `json:"intents"`
	Signals    []domain.Signal                `json:"signals"`
	Warnings   []string                       `json:"warnings,omitempty"`
	Executed   bool                           `json:"executed"`
}

// Service runs the rotation decision pipeline: snapshot, score, allocate,
// risk ladder, plan, adapt to signals, execute. The mutex guarantees at most
// one evaluation is in flight per portfolio.
type Service struct {
	cfg       *config.StrategyConfig
	scorer    *scoring.Service
	snapshots *portfolio.Service
	account   *portfolio.AccountRepository
	adapter   *trading.SignalAdapter
	executor  trading.Executor
	events    *events.Manager
	log       zerolog.Logger

	mu         sync.Mutex
	dayCount   int
	lastResult *Result
}

// NewService creates a new rebalancing service
func NewService(
	cfg *config.StrategyConfig,
	scorer *scoring.Service,
	snapshots *portfolio.Service,
	account *portfolio.AccountRepository,
	adapter *trading.SignalAdapter,
	executor trading.Executor,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		cfg:       cfg,
		scorer:    scorer,
		snapshots: snapshots,
		account:   account,
		adapter:   adapter,
		executor:  executor,
		events:    eventManager,
		log:       log.With().Str("service", "rebalancing").Logger(),
	}
}

// Tick advances the trading-day counter and runs a rebalance when the
// configured cadence comes due. Called once per trading day by the
// scheduler.
func (s *Service) Tick(asOf time.Time) (*Result, error) {
	s.mu.Lock()
	s.dayCount++
	due := s.dayCount%s.cfg.Schedule.RebalanceDays == 0
	s.mu.Unlock()

	if !due {
		s.events.Emit(events.RebalanceSkipped, "rebalancing", map[string]interface{}{
			"as_of": asOf.Format("2006-01-02"),
		})
		return nil, nil
	}

	return s.Rebalance(asOf)
}

// Rebalance runs one full evaluation and executes the resulting plan.
// Exactly one evaluation runs at a time; a second caller blocks until the
// first finishes.
func (s *Service) Rebalance(asOf time.Time) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events.Emit(events.RebalanceStarted, "rebalancing", map[string]interface{}{
		"as_of": asOf.Format("2006-01-02"),
	})

	result, err := s.evaluate(asOf)
	if err != nil {
		s.events.EmitError("rebalancing", err, nil)
		return nil, err
	}

	if err := s.executor.Execute(result.Signals, asOf); err != nil {
		s.events.EmitError("rebalancing", err, nil)
		return nil, fmt.Errorf("failed to execute plan: %w", err)
	}
	result.Executed = true

	for _, sig := range result.Signals {
		s.events.Emit(events.TradeExecuted, "rebalancing", map[string]interface{}{
			"symbol":    sig.Symbol,
			"direction": sig.Direction,
			"size":      sig.Size,
			"reason":    string(sig.Reason),
		})
	}

	// Record the post-trade portfolio value for performance reporting
	post, err := s.snapshots.Snapshot(asOf)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to snapshot portfolio after execution")
	} else if err := s.account.RecordValue(asOf, post.TotalValue, post.CashBalance); err != nil {
		s.log.Warn().Err(err).Msg("Failed to record portfolio value")
	}

	s.lastResult = result
	s.events.Emit(events.RebalanceCompleted, "rebalancing", map[string]interface{}{
		"as_of":   asOf.Format("2006-01-02"),
		"intents": len(result.Intents),
		"signals": len(result.Signals),
	})

	return result, nil
}

// Preview runs one evaluation without executing anything
func (s *Service) Preview(asOf time.Time) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluate(asOf)
}

// LastResult returns the most recently executed rebalance, or nil
func (s *Service) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// evaluate is the pure decision pipeline over one snapshot.
// Callers hold s.mu.
func (s *Service) evaluate(asOf time.Time) (*Result, error) {
	snapshot, err := s.snapshots.Snapshot(asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot portfolio: %w", err)
	}

	candidates := s.scorer.ScoreUniverse(s.cfg.Universe, asOf, s.cfg.Schedule.LookbackDays)

	targets := allocation.Allocate(candidates, s.cfg.Allocation)
	if len(targets) == 0 {
		s.log.Warn().Msg("No instrument qualifies, rotating to cash")
	}

	positions := make([]domain.Position, 0, len(snapshot.Positions))
	for _, pos := range snapshot.Positions {
		positions = append(positions, pos)
	}

	riskIntents, skipped := risk.Evaluate(positions, s.cfg.Risk)
	for _, symbol := range skipped {
		s.log.Warn().Str("symbol", symbol).Msg("Position skipped by risk ladder: unusable P&L")
	}
	for _, intent := range riskIntents {
		s.events.Emit(events.StopLossTriggered, "rebalancing", map[string]interface{}{
			"symbol": intent.Symbol,
			"action": string(intent.Action),
			"reason": string(intent.Reason),
		})
	}

	intents := planning.Plan(snapshot.Positions, targets, riskIntents)
	for _, intent := range intents {
		if intent.Reason == domain.ReasonRankExit {
			s.events.Emit(events.RankExitTriggered, "rebalancing", map[string]interface{}{
				"symbol": intent.Symbol,
			})
		}
	}

	signals := s.adapter.ToSignals(intents, snapshot)

	warnings := append([]string(nil), snapshot.Warnings...)
	warnings = append(warnings, skipped...)

	s.log.Info().
		Time("as_of", asOf).
		Int("candidates", len(candidates)).
		Int("targets", len(targets)).
		Int("risk_intents", len(riskIntents)).
		Int("intents", len(intents)).
		Int("signals", len(signals)).
		Msg("Rebalance plan created")

	return &Result{
		AsOf:       asOf,
		Candidates: candidates,
		Targets:    targets,
		Intents:    intents,
		Signals:    signals,
		Warnings:   warnings,
	}, nil
}

// GenerateSignals implements the signal-source capability consumed by the
// execution loop: one evaluation's worth of ordered signals, no side
// effects.
func (s *Service) GenerateSignals(asOf time.Time) ([]domain.Signal, error) {
	result, err := s.Preview(asOf)
	if err != nil {
		return nil, err
	}
	return result.Signals, nil
}

// MaxPositionSize returns the per-instrument weight cap
func (s *Service) MaxPositionSize() float64 {
	return s.cfg.Allocation.MaxWeightPerSlot
}
