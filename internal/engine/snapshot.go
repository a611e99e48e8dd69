package engine

import (
	"time"

	"github.com/Rajchodisetti/paper-trader/internal/risk"
)

// Snapshot is the immutable, point-in-time view published at the end of each
// cycle. The reporting path only ever sees complete snapshots.
type Snapshot struct {
	UpdatedAt time.Time `json:"updated_at"`
	Cycle     int64     `json:"cycle"`

	// Stale is set while the engine is running on a cached feed snapshot;
	// LastGoodFetch says how old that data actually is.
	Stale         bool      `json:"stale"`
	LastGoodFetch time.Time `json:"last_good_fetch,omitempty"`

	Account   Account          `json:"account"`
	Policy    risk.Policy      `json:"policy"`
	Positions []OpenPosition   `json:"positions"`
	Market    []MarketEntry    `json:"market"`
	Signals   []Signal         `json:"signals"`
}

// OpenPosition augments a Position with its current mark.
type OpenPosition struct {
	Position
	Mark          float64 `json:"mark"`
	Value         float64 `json:"value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// MarketEntry is one row of the scored universe, sorted by score descending.
type MarketEntry struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
	Score     float64 `json:"score"`
}
