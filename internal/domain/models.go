package domain

import "time"

// ExecutionContext selects how generated trade intents are settled.
// It is injected at construction time; decision logic never branches on it.
type ExecutionContext string

const (
	ContextBacktest ExecutionContext = "backtest"
	ContextLive     ExecutionContext = "live"
)

// Security represents a tradable instrument in the rotation universe
type Security struct {
	ID          int64     `json:"id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Exchange    string    `json:"exchange"`
	Active      bool      `json:"active"`
	LastUpdated time.Time `json:"last_updated"`
}

// Candle represents one daily OHLCV bar
type Candle struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Candidate is a scored instrument on an evaluation date.
// Only candidates with a positive score are eligible for allocation.
type Candidate struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
}

// Position represents a held portfolio position as of the latest snapshot.
// Weight and UnrealizedPnLPct are re-derived from market prices on every
// evaluation; executed trades are the only thing that mutates the ledger.
type Position struct {
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	AverageCost      float64 `json:"average_cost"`
	CurrentPrice     float64 `json:"current_price"`
	MarketValue      float64 `json:"market_value"`
	Weight           float64 `json:"weight"`             // fraction of portfolio equity
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"` // NaN when price data is unusable
}

// TargetWeight is the allocator's desired weight for one instrument.
// Ephemeral; recomputed on each rebalance.
type TargetWeight struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// Action is the kind of trade an intent asks for
type Action string

const (
	ActionSell   Action = "SELL"
	ActionBuy    Action = "BUY"
	ActionReduce Action = "REDUCE"
)

// Reason records why an intent was generated
type Reason string

const (
	ReasonRebalance    Reason = "REBALANCE"
	ReasonStopLoss     Reason = "STOP_LOSS"
	ReasonStopLossFull Reason = "STOP_LOSS_FULL"
	ReasonRankExit     Reason = "RANK_EXIT"
)

// TradeIntent is a pending, unexecuted instruction for the execution
// boundary. For SELL the position is closed in full. For REDUCE and BUY,
// TargetDelta is the signed weight change relative to the current position.
type TradeIntent struct {
	Symbol      string  `json:"symbol"`
	Action      Action  `json:"action"`
	TargetDelta float64 `json:"target_delta"`
	Reason      Reason  `json:"reason"`
}

// IsSellSide reports whether the intent releases exposure. The execution
// boundary must settle all sell-side intents before any buy.
func (t TradeIntent) IsSellSide() bool {
	return t.Action == ActionSell || t.Action == ActionReduce
}

// Signal is the direction/size instruction consumed by the execution loop
type Signal struct {
	Symbol    string  `json:"symbol"`
	Direction int     `json:"direction"` // -1 sell, 0 hold, 1 buy
	Price     float64 `json:"price"`
	Size      float64 `json:"size"` // number of shares
	Reason    Reason  `json:"reason"`
}

// SignalSource is the capability every concrete strategy provides to the
// execution loop: generate the next batch of signals for an evaluation
// date, bounded by its own position-size limit.
type SignalSource interface {
	GenerateSignals(asOf time.Time) ([]Signal, error)
	MaxPositionSize() float64
}

// Trade represents an executed trade recorded in the ledger
type Trade struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       string    `json:"side"` // BUY or SELL
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Reason     Reason    `json:"reason"`
	ExecutedAt time.Time `json:"executed_at"`
}
