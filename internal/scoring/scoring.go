package scoring

import "math"

// Engine turns a symbol's price history into a single comparable strength
// score. Higher is more attractive for a long entry. The value itself has no
// unit; only its ordering and the configured thresholds matter.
type Engine struct {
	cfg Config
}

type Config struct {
	MinSamples     int     // below this the score is exactly 0
	MomentumLook   int     // samples back for the momentum reference price
	FastEMA        int     // fast EMA period for the trend term
	SlowEMA        int     // slow EMA period for the trend term
	VolWindow      int     // samples for the volatility term
	MomentumWeight float64
	TrendWeight    float64
	VolWeight      float64
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score computes the composite score from a chronological price window.
// Volatility is a penalty: stable movers are preferred over whipsaws.
// Insufficient history scores 0 so the symbol can neither open nor close a
// position on momentum grounds.
func (e *Engine) Score(prices []float64) float64 {
	if len(prices) < e.cfg.MinSamples {
		return 0
	}

	score := e.cfg.MomentumWeight * momentum(prices, e.cfg.MomentumLook) * 100
	score += e.cfg.TrendWeight * trend(prices, e.cfg.FastEMA, e.cfg.SlowEMA)
	score -= e.cfg.VolWeight * relativeStdev(tail(prices, e.cfg.VolWindow)) * 100
	return score
}

// momentum is the relative price change over the lookback. A zero or
// negative reference price invalidates the term rather than the cycle.
func momentum(prices []float64, lookback int) float64 {
	if lookback <= 0 || lookback >= len(prices) {
		return 0
	}
	ref := prices[len(prices)-1-lookback]
	last := prices[len(prices)-1]
	if ref <= 0 || last <= 0 {
		return 0
	}
	return (last - ref) / ref
}

// trend is the sign of EMA(fast) - EMA(slow): +1 up, -1 down, 0 when the
// window is too short or the EMAs coincide.
func trend(prices []float64, fast, slow int) float64 {
	if slow <= 0 || fast <= 0 || len(prices) < slow {
		return 0
	}
	f := ema(prices, fast)
	s := ema(prices, slow)
	switch {
	case f > s:
		return 1
	case f < s:
		return -1
	default:
		return 0
	}
}

// ema computes an exponential moving average seeded with the first sample.
func ema(prices []float64, period int) float64 {
	k := 2.0 / (float64(period) + 1)
	v := prices[0]
	for _, p := range prices[1:] {
		v = p*k + v*(1-k)
	}
	return v
}

// relativeStdev is the sample standard deviation divided by the mean, so the
// penalty is scale-free across symbols. Invalid samples zero the term.
func relativeStdev(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	mean := 0.0
	for _, p := range prices {
		if p <= 0 {
			return 0
		}
		mean += p
	}
	mean /= float64(len(prices))

	ss := 0.0
	for _, p := range prices {
		d := p - mean
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(prices)-1)) / mean
}

func tail(prices []float64, k int) []float64 {
	if k <= 0 || len(prices) <= k {
		return prices
	}
	return prices[len(prices)-k:]
}
