package feed

import "context"

// StaticClient serves a fixed snapshot set and can be told to fail, which is
// all the engine tests need to drive entries, exits, and stale cycles.
type StaticClient struct {
	Snapshots map[string]Snapshot
	Err       error
}

func NewStaticClient(snaps ...Snapshot) *StaticClient {
	m := make(map[string]Snapshot, len(snaps))
	for _, s := range snaps {
		m[s.Symbol] = s
	}
	return &StaticClient{Snapshots: m}
}

// SetPrice updates one symbol's price in place.
func (s *StaticClient) SetPrice(symbol string, price float64) {
	snap := s.Snapshots[symbol]
	snap.Symbol = symbol
	snap.Price = price
	s.Snapshots[symbol] = snap
}

func (s *StaticClient) Fetch(_ context.Context, symbols []string) (map[string]Snapshot, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[string]Snapshot, len(symbols))
	for _, sym := range symbols {
		if snap, ok := s.Snapshots[sym]; ok {
			out[sym] = snap
		}
	}
	return out, nil
}
