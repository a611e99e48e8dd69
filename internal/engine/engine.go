package engine

import (
	"context"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rajchodisetti/paper-trader/internal/feed"
	"github.com/Rajchodisetti/paper-trader/internal/history"
	"github.com/Rajchodisetti/paper-trader/internal/observ"
	"github.com/Rajchodisetti/paper-trader/internal/risk"
)

const signalLogCapacity = 20

// Config holds the engine's static parameters, supplied at process start.
type Config struct {
	Symbols         []string
	Interval        time.Duration
	Jitter          time.Duration
	HistorySize     int
	MaxPositions    int
	TrailTriggerPct float64
	TrailPct        float64
	InitialCash     float64
}

// staleReporter is implemented by feed clients that can serve cached data.
type staleReporter interface {
	Stale() (bool, time.Time)
}

// Scorer turns a chronological price window into a strength score.
// *scoring.Engine is the production implementation.
type Scorer interface {
	Score(prices []float64) float64
}

// Engine runs the trading loop. One goroutine (Run) is the sole writer of
// history, positions, account, and policy; everyone else reads the snapshot
// published at the end of each cycle.
type Engine struct {
	cfg      Config
	client   feed.Client
	hist     *history.Buffer
	scorer   Scorer
	sizer    *risk.Sizer
	adaptive *risk.Adaptive

	policy    risk.Policy
	account   Account
	positions map[string]*Position
	signals   *signalLog
	cycle     int64

	published atomic.Value // Snapshot
	now       func() time.Time
}

func New(cfg Config, client feed.Client, scorer Scorer, sizer *risk.Sizer, adaptive *risk.Adaptive, policy risk.Policy) *Engine {
	e := &Engine{
		cfg:       cfg,
		client:    client,
		hist:      history.NewBuffer(cfg.HistorySize),
		scorer:    scorer,
		sizer:     sizer,
		adaptive:  adaptive,
		policy:    policy,
		account:   Account{Cash: cfg.InitialCash, Equity: cfg.InitialCash, PeakEquity: cfg.InitialCash},
		positions: make(map[string]*Position),
		signals:   newSignalLog(signalLogCapacity),
		now:       time.Now,
	}
	e.published.Store(Snapshot{})
	return e
}

// Run executes cycles at the configured interval until ctx is cancelled.
// Per-cycle failures are logged and never stop the loop.
func (e *Engine) Run(ctx context.Context) {
	log.Info().Strs("symbols", e.cfg.Symbols).Dur("interval", e.cfg.Interval).
		Float64("cash", e.account.Cash).Msg("engine started")

	e.runCycle(ctx)
	for {
		timer := time.NewTimer(e.nextDelay())
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Int64("cycles", e.cycle).Msg("engine stopped")
			return
		case <-timer.C:
			e.runCycle(ctx)
		}
	}
}

func (e *Engine) nextDelay() time.Duration {
	d := e.cfg.Interval
	if e.cfg.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(e.cfg.Jitter)))
	}
	return d
}

// Snapshot returns the last published state. Safe for concurrent use.
func (e *Engine) Snapshot() Snapshot {
	return e.published.Load().(Snapshot)
}

// runCycle sequences one pass: fetch, history, score, exits, entries,
// mark-to-market, adapt, publish.
func (e *Engine) runCycle(ctx context.Context) {
	started := e.now()
	defer func() {
		observ.CycleDuration.Observe(time.Since(started).Seconds())
		observ.CyclesTotal.Inc()
	}()
	e.cycle++

	snaps, err := e.client.Fetch(ctx, e.cfg.Symbols)
	if err != nil {
		// No data at all, not even cached. Skip the cycle; state is
		// untouched and re-evaluated next tick.
		log.Warn().Err(err).Int64("cycle", e.cycle).Msg("cycle skipped, no feed data")
		e.publish()
		return
	}

	for _, symbol := range e.cfg.Symbols {
		if snap, ok := snaps[symbol]; ok {
			e.hist.Push(symbol, snap.Price)
		}
	}

	scores := make(map[string]float64, len(e.cfg.Symbols))
	for _, symbol := range e.cfg.Symbols {
		scores[symbol] = e.scorer.Score(e.hist.Window(symbol, e.hist.Len(symbol)))
	}

	now := e.now()
	closed := e.manageExits(now, snaps, scores)
	e.manageEntries(now, snaps, scores, closed)
	e.markToMarket(snaps)
	e.adaptive.Adjust(&e.policy, risk.Stats{
		Trades:     e.account.Trades,
		Wins:       e.account.Wins,
		Losses:     e.account.Losses,
		Equity:     e.account.Equity,
		PeakEquity: e.account.PeakEquity,
	}, now)

	e.updateMetrics(now)
	e.publishMarket(snaps, scores)
}

// manageExits evaluates every open position against this cycle's prices and
// returns the symbols it closed. A symbol with no fresh price is skipped:
// positions are never closed on missing data.
func (e *Engine) manageExits(now time.Time, snaps map[string]feed.Snapshot, scores map[string]float64) map[string]bool {
	closed := make(map[string]bool)
	for symbol, pos := range e.positions {
		snap, ok := snaps[symbol]
		if !ok {
			continue
		}
		price := snap.Price

		// Trailing stop ratchets up once the trigger gain is reached.
		if gain := price/pos.EntryPrice - 1; gain >= e.cfg.TrailTriggerPct && price > pos.TrailHigh {
			pos.TrailHigh = price
		}

		switch {
		case price >= pos.TargetPrice:
			e.closePosition(now, pos, price, "target")
			closed[symbol] = true
		case price <= pos.StopPrice:
			e.closePosition(now, pos, price, "stop")
			closed[symbol] = true
		case pos.TrailHigh > 0 && price < pos.TrailHigh*(1-e.cfg.TrailPct):
			e.closePosition(now, pos, price, "trail")
			closed[symbol] = true
		case scores[symbol] < e.policy.ExitThreshold:
			e.closePosition(now, pos, price, "reversal")
			closed[symbol] = true
		}
	}
	return closed
}

func (e *Engine) closePosition(now time.Time, pos *Position, price float64, reason string) {
	proceeds := pos.Quantity * price
	pnl := proceeds - pos.Size
	e.account.Cash += proceeds

	result := "loss"
	if pnl > 0 {
		result = "win"
		e.account.Wins++
	} else {
		e.account.Losses++
	}
	observ.TradesTotal.WithLabelValues(result).Inc()

	delete(e.positions, pos.Symbol)
	e.signals.appendf(now, "SELL %s @ %.4f pnl=%+.2f (%s)", pos.Symbol, price, pnl, reason)
	log.Info().Str("symbol", pos.Symbol).Float64("price", price).Float64("pnl", pnl).
		Str("reason", reason).Msg("position closed")
}

// manageEntries opens positions for the strongest scorers above the entry
// threshold, best first, while slots and cash allow. Symbols closed this
// cycle are re-evaluated next cycle, never re-entered immediately.
func (e *Engine) manageEntries(now time.Time, snaps map[string]feed.Snapshot, scores map[string]float64, closed map[string]bool) {
	if e.policy.CooldownActive(now) {
		return
	}

	ranked := make([]string, 0, len(scores))
	for symbol := range scores {
		ranked = append(ranked, symbol)
	}
	sort.Slice(ranked, func(i, j int) bool { return scores[ranked[i]] > scores[ranked[j]] })

	for _, symbol := range ranked {
		if len(e.positions) >= e.cfg.MaxPositions {
			break
		}
		if _, open := e.positions[symbol]; open {
			continue
		}
		if closed[symbol] {
			continue
		}
		if scores[symbol] <= e.policy.EntryThreshold {
			break // ranked descending, nothing below qualifies either
		}
		snap, ok := snaps[symbol]
		if !ok {
			continue
		}

		size := e.sizer.SizeForEntry(e.account.Cash, e.policy.Aggression)
		if size == 0 {
			continue
		}

		e.account.Cash -= size
		e.account.Trades++
		e.positions[symbol] = &Position{
			Symbol:      symbol,
			EntryPrice:  snap.Price,
			Size:        size,
			Quantity:    size / snap.Price,
			StopPrice:   snap.Price * (1 - e.policy.StopLossPct),
			TargetPrice: snap.Price * (1 + e.policy.TakeProfitPct),
			OpenedAt:    now,
		}
		observ.EntriesTotal.Inc()
		e.signals.appendf(now, "BUY %s @ %.4f size=%.2f score=%.2f", symbol, snap.Price, size, scores[symbol])
		log.Info().Str("symbol", symbol).Float64("price", snap.Price).Float64("size", size).
			Float64("score", scores[symbol]).Msg("position opened")
	}
}

// markToMarket recomputes equity from cash plus open positions, valuing a
// position at this cycle's price or, when missing, its last buffered one.
func (e *Engine) markToMarket(snaps map[string]feed.Snapshot) {
	equity := e.account.Cash
	for symbol, pos := range e.positions {
		price := pos.EntryPrice
		if snap, ok := snaps[symbol]; ok {
			price = snap.Price
		} else if last, ok := e.hist.Last(symbol); ok {
			price = last
		}
		equity += pos.Quantity * price
	}
	e.account.Equity = equity
	if equity > e.account.PeakEquity {
		e.account.PeakEquity = equity
	}
	if dd := e.account.Drawdown(); dd > e.account.MaxDrawdown {
		e.account.MaxDrawdown = dd
	}
}

func (e *Engine) updateMetrics(now time.Time) {
	observ.EquityGauge.Set(e.account.Equity)
	observ.DrawdownGauge.Set(e.account.Drawdown())
	observ.AggressionGauge.Set(e.policy.Aggression)
	observ.OpenPositionsGauge.Set(float64(len(e.positions)))
	if e.policy.CooldownActive(now) {
		observ.CooldownGauge.Set(1)
	} else {
		observ.CooldownGauge.Set(0)
	}
}

// publishMarket builds and publishes the cycle's snapshot with the scored
// universe included.
func (e *Engine) publishMarket(snaps map[string]feed.Snapshot, scores map[string]float64) {
	market := make([]MarketEntry, 0, len(snaps))
	for _, symbol := range e.cfg.Symbols {
		snap, ok := snaps[symbol]
		if !ok {
			continue
		}
		market = append(market, MarketEntry{
			Symbol:    symbol,
			Price:     snap.Price,
			Change24h: snap.Change24h,
			Score:     scores[symbol],
		})
	}
	sort.Slice(market, func(i, j int) bool { return market[i].Score > market[j].Score })
	e.published.Store(e.buildSnapshot(market, snaps))
}

// publish republishes the previous market state after a cycle that
// processed no feed data. The snapshot is flagged stale and keeps the
// prior UpdatedAt so readers see the true age of what they are served,
// including a zero UpdatedAt when the feed has never delivered anything.
func (e *Engine) publish() {
	prev := e.Snapshot()
	snap := e.buildSnapshot(prev.Market, nil)
	snap.Stale = true
	snap.UpdatedAt = prev.UpdatedAt
	e.published.Store(snap)
}

func (e *Engine) buildSnapshot(market []MarketEntry, snaps map[string]feed.Snapshot) Snapshot {
	snap := Snapshot{
		UpdatedAt: e.now(),
		Cycle:     e.cycle,
		Account:   e.account,
		Policy:    e.policy,
		Market:    market,
		Signals:   e.signals.list(),
	}
	if sr, ok := e.client.(staleReporter); ok {
		snap.Stale, snap.LastGoodFetch = sr.Stale()
	}

	snap.Positions = make([]OpenPosition, 0, len(e.positions))
	for symbol, pos := range e.positions {
		mark := pos.EntryPrice
		if s, ok := snaps[symbol]; ok {
			mark = s.Price
		} else if last, ok := e.hist.Last(symbol); ok {
			mark = last
		}
		snap.Positions = append(snap.Positions, OpenPosition{
			Position:      *pos,
			Mark:          mark,
			Value:         pos.Quantity * mark,
			UnrealizedPnL: pos.Quantity*mark - pos.Size,
		})
	}
	sort.Slice(snap.Positions, func(i, j int) bool { return snap.Positions[i].Symbol < snap.Positions[j].Symbol })

	return snap
}
