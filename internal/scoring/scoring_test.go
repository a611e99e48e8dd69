package scoring

import (
	"math"
	"testing"
)

func testConfig() Config {
	return Config{
		MinSamples:     5,
		MomentumLook:   3,
		FastEMA:        3,
		SlowEMA:        5,
		VolWindow:      5,
		MomentumWeight: 1.0,
		TrendWeight:    0.8,
		VolWeight:      0.5,
	}
}

func TestScoreInsufficientHistoryIsNeutral(t *testing.T) {
	e := NewEngine(testConfig())

	for _, prices := range [][]float64{nil, {}, {100}, {100, 101, 102, 103}} {
		if got := e.Score(prices); got != 0 {
			t.Fatalf("score(%v) = %v, want exactly 0", prices, got)
		}
	}
}

func TestScoreIdempotent(t *testing.T) {
	e := NewEngine(testConfig())
	prices := []float64{100, 101, 99, 102, 104, 103, 105}

	first := e.Score(prices)
	second := e.Score(prices)
	if first != second {
		t.Fatalf("score not idempotent: %v then %v", first, second)
	}
}

func TestScoreSignFollowsDirection(t *testing.T) {
	e := NewEngine(testConfig())

	rising := []float64{100, 102, 104, 106, 108, 110}
	falling := []float64{110, 108, 106, 104, 102, 100}

	up := e.Score(rising)
	down := e.Score(falling)
	if up <= 0 {
		t.Fatalf("rising series scored %v, want > 0", up)
	}
	if down >= 0 {
		t.Fatalf("falling series scored %v, want < 0", down)
	}
}

func TestVolatilityIsAPenalty(t *testing.T) {
	cfg := testConfig()
	cfg.TrendWeight = 0 // isolate momentum vs volatility
	e := NewEngine(cfg)

	// Same endpoints, one path calm, one whipsawing.
	calm := []float64{100, 101, 102, 103, 104, 105}
	choppy := []float64{100, 110, 95, 112, 96, 105}

	if cs, ws := e.Score(calm), e.Score(choppy); cs <= ws {
		t.Fatalf("calm path (%v) should outscore choppy path (%v)", cs, ws)
	}
}

func TestMomentumGuardsZeroReference(t *testing.T) {
	if got := momentum([]float64{0, 1, 2, 3}, 3); got != 0 {
		t.Fatalf("momentum with zero reference = %v, want 0", got)
	}
	if got := momentum([]float64{100, 101}, 5); got != 0 {
		t.Fatalf("momentum with lookback past start = %v, want 0", got)
	}
}

func TestRelativeStdevInvalidSamples(t *testing.T) {
	if got := relativeStdev([]float64{100, -5, 102}); got != 0 {
		t.Fatalf("stdev over invalid prices = %v, want 0", got)
	}
	if got := relativeStdev([]float64{100}); got != 0 {
		t.Fatalf("stdev of one sample = %v, want 0", got)
	}
}

func TestRelativeStdevValue(t *testing.T) {
	got := relativeStdev([]float64{100, 102, 98, 100})
	// sample stdev of {100,102,98,100} is sqrt(8/3), mean 100
	want := math.Sqrt(8.0/3.0) / 100
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("relativeStdev = %v, want %v", got, want)
	}
}

func TestTrend(t *testing.T) {
	up := []float64{100, 100, 100, 104, 108, 112}
	down := []float64{112, 112, 112, 106, 102, 98}
	if got := trend(up, 3, 5); got != 1 {
		t.Fatalf("trend(up) = %v, want 1", got)
	}
	if got := trend(down, 3, 5); got != -1 {
		t.Fatalf("trend(down) = %v, want -1", got)
	}
	if got := trend([]float64{100, 101}, 3, 5); got != 0 {
		t.Fatalf("trend with short window = %v, want 0", got)
	}
}
