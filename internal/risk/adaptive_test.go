package risk

import (
	"testing"
	"time"
)

func testAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		MinAggression:     0.05,
		MaxAggression:     0.45,
		MinEntryThreshold: 0.5,
		MaxEntryThreshold: 4.0,
		MinSampleTrades:   5,
		HighWatermark:     0.55,
		LowWatermark:      0.40,
		MaxDrawdown:       0.15,
		Cooldown:          15 * time.Minute,
	}
}

func testPolicy() Policy {
	return Policy{
		Aggression:     0.20,
		EntryThreshold: 1.5,
		ExitThreshold:  -1.5,
		TakeProfitPct:  0.05,
		StopLossPct:    0.03,
	}
}

func TestAdjustBelowSampleIsNoop(t *testing.T) {
	a := NewAdaptive(testAdaptiveConfig())
	p := testPolicy()

	a.Adjust(&p, Stats{Wins: 3, Losses: 0, Equity: 100, PeakEquity: 100}, time.Now())
	if p.Aggression != 0.20 {
		t.Fatalf("aggression moved on %d closed trades: %v", 3, p.Aggression)
	}
}

func TestAdjustRaisesOnHighWinRate(t *testing.T) {
	a := NewAdaptive(testAdaptiveConfig())
	p := testPolicy()

	a.Adjust(&p, Stats{Wins: 5, Losses: 1, Equity: 110, PeakEquity: 110}, time.Now())
	if p.Aggression <= 0.20 {
		t.Fatalf("aggression = %v, want increase", p.Aggression)
	}
	if p.EntryThreshold >= 1.5 {
		t.Fatalf("entry threshold = %v, want loosened", p.EntryThreshold)
	}
}

func TestAdjustRetreatsOnLowWinRate(t *testing.T) {
	a := NewAdaptive(testAdaptiveConfig())
	p := testPolicy()

	a.Adjust(&p, Stats{Wins: 1, Losses: 5, Equity: 90, PeakEquity: 100}, time.Now())
	if p.Aggression >= 0.20 {
		t.Fatalf("aggression = %v, want decrease", p.Aggression)
	}
}

func TestAggressionAlwaysWithinBounds(t *testing.T) {
	cfg := testAdaptiveConfig()
	a := NewAdaptive(cfg)
	p := testPolicy()
	p.Aggression = cfg.MaxAggression

	now := time.Now()
	stats := Stats{Wins: 10, Losses: 0, Equity: 200, PeakEquity: 200}
	for i := 0; i < 20; i++ {
		stats.Wins += cfg.MinSampleTrades
		a.Adjust(&p, stats, now)
		if p.Aggression < cfg.MinAggression || p.Aggression > cfg.MaxAggression {
			t.Fatalf("aggression %v escaped [%v, %v]", p.Aggression, cfg.MinAggression, cfg.MaxAggression)
		}
	}
	if p.Aggression != cfg.MaxAggression {
		t.Fatalf("winning streak should pin aggression at ceiling, got %v", p.Aggression)
	}
}

func TestDrawdownBreakerForcesFloorAndCooldown(t *testing.T) {
	cfg := testAdaptiveConfig()
	a := NewAdaptive(cfg)
	p := testPolicy()
	now := time.Now()

	// High win rate would raise aggression, but drawdown must win.
	a.Adjust(&p, Stats{Wins: 5, Losses: 0, Equity: 80, PeakEquity: 100}, now)

	if p.Aggression != cfg.MinAggression {
		t.Fatalf("aggression = %v, want floor %v", p.Aggression, cfg.MinAggression)
	}
	if !p.CooldownActive(now.Add(time.Minute)) {
		t.Fatal("cooldown should be active after breaker trip")
	}
	if p.CooldownActive(now.Add(cfg.Cooldown + time.Minute)) {
		t.Fatal("cooldown should elapse")
	}
}

func TestBreakerDoesNotExtendActiveCooldown(t *testing.T) {
	cfg := testAdaptiveConfig()
	a := NewAdaptive(cfg)
	p := testPolicy()
	now := time.Now()

	a.Adjust(&p, Stats{Wins: 0, Losses: 5, Equity: 80, PeakEquity: 100}, now)
	until := p.CooldownUntil

	a.Adjust(&p, Stats{Wins: 0, Losses: 5, Equity: 78, PeakEquity: 100}, now.Add(time.Minute))
	if !p.CooldownUntil.Equal(until) {
		t.Fatalf("cooldown extended from %v to %v while still active", until, p.CooldownUntil)
	}
}

func TestStatsDrawdown(t *testing.T) {
	if dd := (Stats{Equity: 85, PeakEquity: 100}).Drawdown(); dd != 0.15 {
		t.Fatalf("drawdown = %v, want 0.15", dd)
	}
	if dd := (Stats{Equity: 110, PeakEquity: 100}).Drawdown(); dd != 0 {
		t.Fatalf("drawdown above peak = %v, want 0", dd)
	}
	if dd := (Stats{Equity: 10, PeakEquity: 0}).Drawdown(); dd != 0 {
		t.Fatalf("drawdown with zero peak = %v, want 0", dd)
	}
}
