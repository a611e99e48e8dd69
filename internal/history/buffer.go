package history

// Buffer keeps the last N prices per symbol. It is append-only and written
// exclusively by the scheduler goroutine, so it carries no lock of its own;
// readers get copies via Window.
type Buffer struct {
	capacity int
	series   map[string][]float64
}

// NewBuffer creates a buffer holding up to capacity samples per symbol.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 60
	}
	return &Buffer{
		capacity: capacity,
		series:   make(map[string][]float64),
	}
}

// Push appends a price sample, evicting the oldest once capacity is reached.
func (b *Buffer) Push(symbol string, price float64) {
	s := b.series[symbol]
	if len(s) >= b.capacity {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	b.series[symbol] = append(s, price)
}

// Window returns a copy of the last k prices in chronological order, or nil
// if fewer than k samples are buffered.
func (b *Buffer) Window(symbol string, k int) []float64 {
	s := b.series[symbol]
	if k <= 0 || len(s) < k {
		return nil
	}
	out := make([]float64, k)
	copy(out, s[len(s)-k:])
	return out
}

// Len reports how many samples are buffered for symbol.
func (b *Buffer) Len(symbol string) int {
	return len(b.series[symbol])
}

// Last returns the most recent price, or false if the symbol has no samples.
func (b *Buffer) Last(symbol string) (float64, bool) {
	s := b.series[symbol]
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}
