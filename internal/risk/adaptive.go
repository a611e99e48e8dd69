package risk

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Policy is the tunable slice of trading behavior: how much cash an entry
// commits, how strong a score must be to enter, and where exits sit. Only
// the adaptive controller mutates it, once per cycle.
type Policy struct {
	Aggression     float64   `json:"aggression"`
	EntryThreshold float64   `json:"entry_threshold"`
	ExitThreshold  float64   `json:"exit_threshold"`
	TakeProfitPct  float64   `json:"take_profit_pct"`
	StopLossPct    float64   `json:"stop_loss_pct"`
	CooldownUntil  time.Time `json:"cooldown_until,omitempty"`
}

// CooldownActive reports whether new entries are currently suppressed.
func (p *Policy) CooldownActive(now time.Time) bool {
	return now.Before(p.CooldownUntil)
}

// Stats is the realized-performance input to an adjustment.
type Stats struct {
	Trades     int
	Wins       int
	Losses     int
	Equity     float64
	PeakEquity float64
}

// Drawdown is the fractional decline of equity from its peak, never
// negative.
func (s Stats) Drawdown() float64 {
	if s.PeakEquity <= 0 {
		return 0
	}
	dd := (s.PeakEquity - s.Equity) / s.PeakEquity
	if dd < 0 {
		return 0
	}
	return dd
}

// WinRate is the all-time fraction of closed trades that were wins.
func (s Stats) WinRate() float64 {
	closed := s.Wins + s.Losses
	if closed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(closed)
}

type AdaptiveConfig struct {
	MinAggression     float64
	MaxAggression     float64
	MinEntryThreshold float64
	MaxEntryThreshold float64
	MinSampleTrades   int // closed trades required between win-rate adjustments
	HighWatermark     float64
	LowWatermark      float64
	MaxDrawdown       float64
	Cooldown          time.Duration
}

// Adaptive observes realized win rate and drawdown and nudges the policy
// within its bounds. The drawdown circuit breaker is evaluated every cycle
// and overrides any win-rate-driven increase in the same cycle.
type Adaptive struct {
	cfg            AdaptiveConfig
	closedAtAdjust int
}

func NewAdaptive(cfg AdaptiveConfig) *Adaptive {
	return &Adaptive{cfg: cfg}
}

// Adjust runs once per cycle, after lifecycle transitions.
func (a *Adaptive) Adjust(p *Policy, stats Stats, now time.Time) {
	closed := stats.Wins + stats.Losses

	if closed-a.closedAtAdjust >= a.cfg.MinSampleTrades {
		a.closedAtAdjust = closed
		winRate := stats.WinRate()
		switch {
		case winRate > a.cfg.HighWatermark:
			p.Aggression *= 1.10
			p.EntryThreshold *= 0.95 // loosen entries while the book is winning
		case winRate < a.cfg.LowWatermark:
			p.Aggression *= 0.90
			p.EntryThreshold *= 1.05
		}
		log.Debug().Float64("win_rate", winRate).Float64("aggression", p.Aggression).
			Float64("entry_threshold", p.EntryThreshold).Msg("policy adjusted")
	}

	// Circuit breaker: takes priority over any increase above.
	if dd := stats.Drawdown(); dd > a.cfg.MaxDrawdown {
		p.Aggression = a.cfg.MinAggression
		if !p.CooldownActive(now) {
			p.CooldownUntil = now.Add(a.cfg.Cooldown)
			log.Warn().Float64("drawdown", dd).Time("cooldown_until", p.CooldownUntil).
				Msg("drawdown limit breached, entries suppressed")
		}
	}

	p.Aggression = clamp(p.Aggression, a.cfg.MinAggression, a.cfg.MaxAggression)
	p.EntryThreshold = clamp(p.EntryThreshold, a.cfg.MinEntryThreshold, a.cfg.MaxEntryThreshold)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
