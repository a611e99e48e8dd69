package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics, registered on the default registry and served by the
// reporting server at /metrics.
var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_cycles_total",
		Help: "Completed scheduler cycles.",
	})

	FetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feed_fetch_failures_total",
		Help: "Price feed fetches that fell back to the cached snapshot.",
	})

	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_trades_total",
		Help: "Closed trades by outcome.",
	}, []string{"result"})

	EntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engine_entries_total",
		Help: "Positions opened.",
	})

	EquityGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "account_equity",
		Help: "Mark-to-market equity (cash + open positions).",
	})

	DrawdownGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "account_drawdown",
		Help: "Fractional decline of equity from its peak.",
	})

	AggressionGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "policy_aggression",
		Help: "Fraction of cash committed to a new entry.",
	})

	OpenPositionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "engine_open_positions",
		Help: "Currently open positions.",
	})

	CooldownGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "policy_cooldown_active",
		Help: "1 while the drawdown cooldown suppresses new entries.",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_cycle_duration_seconds",
		Help:    "Wall time of one scheduler cycle including the fetch.",
		Buckets: prometheus.DefBuckets,
	})
)
