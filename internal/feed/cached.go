package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rajchodisetti/paper-trader/internal/observ"
)

// Cached wraps a Client with last-good-snapshot fallback. On any fetch
// failure it hands back the previous map unchanged so the scheduler keeps
// running on stale data instead of stalling. The only time Fetch errors is
// when there has never been a successful fetch.
type Cached struct {
	inner Client

	mu        sync.Mutex
	last      map[string]Snapshot
	fetchedAt time.Time
	stale     bool
}

func NewCached(inner Client) *Cached {
	return &Cached{inner: inner}
}

func (c *Cached) Fetch(ctx context.Context, symbols []string) (map[string]Snapshot, error) {
	snaps, err := c.inner.Fetch(ctx, symbols)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.last = snaps
		c.fetchedAt = time.Now()
		c.stale = false
		return copySnapshots(snaps), nil
	}

	observ.FetchFailuresTotal.Inc()
	c.stale = true
	if c.last == nil {
		return nil, err
	}
	log.Warn().Err(err).Time("last_good", c.fetchedAt).Msg("feed fetch failed, reusing cached snapshot")
	return copySnapshots(c.last), nil
}

// Stale reports whether the last Fetch failed to deliver fresh data, and
// when data was last actually fetched. It is true both after a fallback to
// the cached map and when no fetch has ever succeeded.
func (c *Cached) Stale() (bool, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale, c.fetchedAt
}

func copySnapshots(in map[string]Snapshot) map[string]Snapshot {
	out := make(map[string]Snapshot, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
