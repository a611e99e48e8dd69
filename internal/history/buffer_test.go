package history

import "testing"

func TestPushEvictsOldestAtCapacity(t *testing.T) {
	b := NewBuffer(3)
	for _, p := range []float64{1, 2, 3, 4, 5} {
		b.Push("BTC", p)
	}

	if got := b.Len("BTC"); got != 3 {
		t.Fatalf("len = %d, want 3", got)
	}
	w := b.Window("BTC", 3)
	want := []float64{3, 4, 5}
	for i := range want {
		if w[i] != want[i] {
			t.Fatalf("window = %v, want %v", w, want)
		}
	}
}

func TestWindowInsufficientSamples(t *testing.T) {
	b := NewBuffer(10)
	b.Push("ETH", 100)
	b.Push("ETH", 101)

	if w := b.Window("ETH", 3); w != nil {
		t.Fatalf("window with 2 of 3 samples = %v, want nil", w)
	}
	if w := b.Window("UNKNOWN", 1); w != nil {
		t.Fatalf("window for unknown symbol = %v, want nil", w)
	}
	if w := b.Window("ETH", 0); w != nil {
		t.Fatalf("window(0) = %v, want nil", w)
	}
}

func TestWindowReturnsCopy(t *testing.T) {
	b := NewBuffer(5)
	b.Push("SOL", 10)
	b.Push("SOL", 11)

	w := b.Window("SOL", 2)
	w[0] = 999

	if again := b.Window("SOL", 2); again[0] != 10 {
		t.Fatalf("buffer mutated through window copy: %v", again)
	}
}

func TestLast(t *testing.T) {
	b := NewBuffer(5)
	if _, ok := b.Last("BTC"); ok {
		t.Fatal("Last on empty buffer should report false")
	}
	b.Push("BTC", 42)
	b.Push("BTC", 43)
	if last, ok := b.Last("BTC"); !ok || last != 43 {
		t.Fatalf("Last = %v, %v; want 43, true", last, ok)
	}
}
