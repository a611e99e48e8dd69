package engine

import (
	"fmt"
	"time"
)

// Position is one open simulated holding. At most one exists per symbol.
// Quantity is units held (Size / EntryPrice); Size is the cash committed.
type Position struct {
	Symbol      string    `json:"symbol"`
	EntryPrice  float64   `json:"entry_price"`
	Size        float64   `json:"size"`
	Quantity    float64   `json:"quantity"`
	StopPrice   float64   `json:"stop_price"`
	TargetPrice float64   `json:"target_price"`
	TrailHigh   float64   `json:"trail_high,omitempty"`
	OpenedAt    time.Time `json:"opened_at"`
}

// Account accumulates realized performance. Equity and drawdown are
// recomputed every cycle from cash plus open-position marks.
type Account struct {
	Cash        float64 `json:"cash"`
	Equity      float64 `json:"equity"`
	PeakEquity  float64 `json:"peak_equity"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Trades      int     `json:"trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
}

// Drawdown is the current fractional decline from peak equity, never
// negative.
func (a *Account) Drawdown() float64 {
	if a.PeakEquity <= 0 {
		return 0
	}
	dd := (a.PeakEquity - a.Equity) / a.PeakEquity
	if dd < 0 {
		return 0
	}
	return dd
}

// WinRate is the all-time fraction of closed trades that won.
func (a *Account) WinRate() float64 {
	closed := a.Wins + a.Losses
	if closed == 0 {
		return 0
	}
	return float64(a.Wins) / float64(closed)
}

// Signal is one human-readable lifecycle event for the reporting surface.
type Signal struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// signalLog is a bounded FIFO of recent signals, written only by the
// scheduler goroutine.
type signalLog struct {
	entries []Signal
	cap     int
}

func newSignalLog(capacity int) *signalLog {
	return &signalLog{cap: capacity}
}

func (l *signalLog) appendf(at time.Time, format string, args ...any) {
	if len(l.entries) >= l.cap {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, Signal{At: at, Text: fmt.Sprintf(format, args...)})
}

// list returns the signals most-recent-first.
func (l *signalLog) list() []Signal {
	out := make([]Signal, len(l.entries))
	for i, s := range l.entries {
		out[len(out)-1-i] = s
	}
	return out
}
