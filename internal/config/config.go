package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Feed struct {
	BaseURL          string  `yaml:"base_url"`
	VsCurrency       string  `yaml:"vs_currency"`
	TimeoutMs        int     `yaml:"timeout_ms"`
	RequestsPerMin   float64 `yaml:"requests_per_min"`
	BreakerThreshold uint32  `yaml:"breaker_threshold"`
	BreakerTimeoutMs int     `yaml:"breaker_timeout_ms"`
}

type Scheduler struct {
	IntervalSec int `yaml:"interval_sec"`
	JitterSec   int `yaml:"jitter_sec"`
}

type Scoring struct {
	MinSamples     int     `yaml:"min_samples"`
	MomentumLook   int     `yaml:"momentum_lookback"`
	FastEMA        int     `yaml:"fast_ema"`
	SlowEMA        int     `yaml:"slow_ema"`
	VolWindow      int     `yaml:"vol_window"`
	MomentumWeight float64 `yaml:"momentum_weight"`
	TrendWeight    float64 `yaml:"trend_weight"`
	VolWeight      float64 `yaml:"vol_weight"`
}

type Risk struct {
	InitialCash     float64 `yaml:"initial_cash"`
	MaxPositions    int     `yaml:"max_positions"`
	MinTradeUSD     float64 `yaml:"min_trade_usd"`
	Aggression      float64 `yaml:"aggression"`
	MinAggression   float64 `yaml:"min_aggression"`
	MaxAggression   float64 `yaml:"max_aggression"`
	EntryThreshold  float64 `yaml:"entry_threshold"`
	MinEntryThresh  float64 `yaml:"min_entry_threshold"`
	MaxEntryThresh  float64 `yaml:"max_entry_threshold"`
	ExitThreshold   float64 `yaml:"exit_threshold"`
	TakeProfitPct   float64 `yaml:"take_profit_pct"`
	StopLossPct     float64 `yaml:"stop_loss_pct"`
	TrailTriggerPct float64 `yaml:"trail_trigger_pct"`
	TrailPct        float64 `yaml:"trail_pct"`
	MinSampleTrades int     `yaml:"min_sample_trades"`
	HighWatermark   float64 `yaml:"win_rate_high_watermark"`
	LowWatermark    float64 `yaml:"win_rate_low_watermark"`
	MaxDrawdown     float64 `yaml:"max_drawdown"`
	CooldownSec     int     `yaml:"cooldown_sec"`
}

type Server struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	StaleAfterSec  int    `yaml:"stale_after_sec"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" | "json"
}

type Root struct {
	Symbols     []string  `yaml:"symbols"`
	HistorySize int       `yaml:"history_size"`
	Feed        Feed      `yaml:"feed"`
	Scheduler   Scheduler `yaml:"scheduler"`
	Scoring     Scoring   `yaml:"scoring"`
	Risk        Risk      `yaml:"risk"`
	Server      Server    `yaml:"server"`
	Logging     Logging   `yaml:"logging"`
}

func Load(path string) (Root, error) {
	var c Root
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Root) applyDefaults() {
	if len(c.Symbols) == 0 {
		c.Symbols = []string{"BTC", "ETH", "SOL", "BNB", "XRP", "ADA", "DOGE"}
	}
	if c.HistorySize == 0 {
		c.HistorySize = 60
	}

	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.Feed.VsCurrency == "" {
		c.Feed.VsCurrency = "usd"
	}
	if c.Feed.TimeoutMs == 0 {
		c.Feed.TimeoutMs = 10000
	}
	if c.Feed.RequestsPerMin == 0 {
		c.Feed.RequestsPerMin = 30
	}
	if c.Feed.BreakerThreshold == 0 {
		c.Feed.BreakerThreshold = 3
	}
	if c.Feed.BreakerTimeoutMs == 0 {
		c.Feed.BreakerTimeoutMs = 60000
	}

	if c.Scheduler.IntervalSec == 0 {
		c.Scheduler.IntervalSec = 30
	}

	if c.Scoring.MinSamples == 0 {
		c.Scoring.MinSamples = 10
	}
	if c.Scoring.MomentumLook == 0 {
		c.Scoring.MomentumLook = 8
	}
	if c.Scoring.FastEMA == 0 {
		c.Scoring.FastEMA = 8
	}
	if c.Scoring.SlowEMA == 0 {
		c.Scoring.SlowEMA = 20
	}
	if c.Scoring.VolWindow == 0 {
		c.Scoring.VolWindow = 20
	}
	if c.Scoring.MomentumWeight == 0 {
		c.Scoring.MomentumWeight = 1.0
	}
	if c.Scoring.TrendWeight == 0 {
		c.Scoring.TrendWeight = 0.8
	}
	if c.Scoring.VolWeight == 0 {
		c.Scoring.VolWeight = 0.5
	}

	if c.Risk.InitialCash == 0 {
		c.Risk.InitialCash = 50
	}
	if c.Risk.MaxPositions == 0 {
		c.Risk.MaxPositions = 7
	}
	if c.Risk.MinTradeUSD == 0 {
		c.Risk.MinTradeUSD = 2
	}
	if c.Risk.Aggression == 0 {
		c.Risk.Aggression = 0.20
	}
	if c.Risk.MinAggression == 0 {
		c.Risk.MinAggression = 0.05
	}
	if c.Risk.MaxAggression == 0 {
		c.Risk.MaxAggression = 0.45
	}
	if c.Risk.EntryThreshold == 0 {
		c.Risk.EntryThreshold = 1.5
	}
	if c.Risk.MinEntryThresh == 0 {
		c.Risk.MinEntryThresh = 0.5
	}
	if c.Risk.MaxEntryThresh == 0 {
		c.Risk.MaxEntryThresh = 4.0
	}
	if c.Risk.ExitThreshold == 0 {
		c.Risk.ExitThreshold = -1.5
	}
	if c.Risk.TakeProfitPct == 0 {
		c.Risk.TakeProfitPct = 0.05
	}
	if c.Risk.StopLossPct == 0 {
		c.Risk.StopLossPct = 0.03
	}
	if c.Risk.TrailTriggerPct == 0 {
		c.Risk.TrailTriggerPct = 0.02
	}
	if c.Risk.TrailPct == 0 {
		c.Risk.TrailPct = 0.015
	}
	if c.Risk.MinSampleTrades == 0 {
		c.Risk.MinSampleTrades = 5
	}
	if c.Risk.HighWatermark == 0 {
		c.Risk.HighWatermark = 0.55
	}
	if c.Risk.LowWatermark == 0 {
		c.Risk.LowWatermark = 0.40
	}
	if c.Risk.MaxDrawdown == 0 {
		c.Risk.MaxDrawdown = 0.15
	}
	if c.Risk.CooldownSec == 0 {
		c.Risk.CooldownSec = 900
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Server.ReadTimeoutMs == 0 {
		c.Server.ReadTimeoutMs = 10000
	}
	if c.Server.WriteTimeoutMs == 0 {
		c.Server.WriteTimeoutMs = 10000
	}
	if c.Server.StaleAfterSec == 0 {
		c.Server.StaleAfterSec = 3 * c.Scheduler.IntervalSec
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate rejects configurations that are programming errors rather than
// runtime conditions. These are fatal at startup.
func (c *Root) Validate() error {
	r := c.Risk
	if r.MinAggression <= 0 || r.MinAggression > r.MaxAggression {
		return fmt.Errorf("config: aggression bounds invalid: min=%v max=%v", r.MinAggression, r.MaxAggression)
	}
	if r.Aggression < r.MinAggression || r.Aggression > r.MaxAggression {
		return fmt.Errorf("config: initial aggression %v outside [%v, %v]", r.Aggression, r.MinAggression, r.MaxAggression)
	}
	if r.MinEntryThresh > r.MaxEntryThresh {
		return fmt.Errorf("config: entry threshold bounds invalid: min=%v max=%v", r.MinEntryThresh, r.MaxEntryThresh)
	}
	if r.EntryThreshold < r.MinEntryThresh || r.EntryThreshold > r.MaxEntryThresh {
		return fmt.Errorf("config: entry threshold %v outside [%v, %v]", r.EntryThreshold, r.MinEntryThresh, r.MaxEntryThresh)
	}
	if r.ExitThreshold >= 0 {
		return fmt.Errorf("config: exit threshold must be negative, got %v", r.ExitThreshold)
	}
	if r.TakeProfitPct <= 0 || r.TakeProfitPct >= 1 {
		return fmt.Errorf("config: take_profit_pct %v outside (0, 1)", r.TakeProfitPct)
	}
	if r.StopLossPct <= 0 || r.StopLossPct >= 1 {
		return fmt.Errorf("config: stop_loss_pct %v outside (0, 1)", r.StopLossPct)
	}
	if r.MaxDrawdown <= 0 || r.MaxDrawdown >= 1 {
		return fmt.Errorf("config: max_drawdown %v outside (0, 1)", r.MaxDrawdown)
	}
	if r.LowWatermark >= r.HighWatermark {
		return fmt.Errorf("config: win rate watermarks invalid: low=%v high=%v", r.LowWatermark, r.HighWatermark)
	}
	if r.InitialCash <= 0 {
		return fmt.Errorf("config: initial_cash must be positive, got %v", r.InitialCash)
	}
	if r.MaxPositions <= 0 {
		return fmt.Errorf("config: max_positions must be positive, got %d", r.MaxPositions)
	}
	if c.HistorySize < c.Scoring.MinSamples {
		return fmt.Errorf("config: history_size %d smaller than scoring min_samples %d", c.HistorySize, c.Scoring.MinSamples)
	}
	if c.Scoring.FastEMA >= c.Scoring.SlowEMA {
		return fmt.Errorf("config: fast_ema %d must be below slow_ema %d", c.Scoring.FastEMA, c.Scoring.SlowEMA)
	}
	if c.Scheduler.IntervalSec <= 0 {
		return fmt.Errorf("config: interval_sec must be positive, got %d", c.Scheduler.IntervalSec)
	}
	return nil
}
