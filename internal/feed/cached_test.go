package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCachedFallsBackToLastGood(t *testing.T) {
	inner := NewStaticClient(Snapshot{Symbol: "BTC", Price: 100})
	c := NewCached(inner)

	snaps, err := c.Fetch(context.Background(), []string{"BTC"})
	require.NoError(t, err)
	require.Equal(t, 100.0, snaps["BTC"].Price)

	stale, _ := c.Stale()
	require.False(t, stale)

	inner.Err = errors.New("boom")
	snaps, err = c.Fetch(context.Background(), []string{"BTC"})
	require.NoError(t, err, "cached fallback must not surface the fetch error")
	require.Equal(t, 100.0, snaps["BTC"].Price)

	stale, at := c.Stale()
	require.True(t, stale)
	require.False(t, at.IsZero())

	// Recovery clears the stale flag.
	inner.Err = nil
	inner.SetPrice("BTC", 101)
	snaps, err = c.Fetch(context.Background(), []string{"BTC"})
	require.NoError(t, err)
	require.Equal(t, 101.0, snaps["BTC"].Price)
	stale, _ = c.Stale()
	require.False(t, stale)
}

func TestCachedErrorsWithNoHistory(t *testing.T) {
	inner := NewStaticClient()
	inner.Err = errors.New("down")
	c := NewCached(inner)

	_, err := c.Fetch(context.Background(), []string{"BTC"})
	require.Error(t, err)

	stale, at := c.Stale()
	require.True(t, stale, "a provider that has never delivered data is stale")
	require.True(t, at.IsZero())
}

func TestCachedReturnsCopies(t *testing.T) {
	inner := NewStaticClient(Snapshot{Symbol: "BTC", Price: 100})
	c := NewCached(inner)

	snaps, err := c.Fetch(context.Background(), []string{"BTC"})
	require.NoError(t, err)
	snaps["BTC"] = Snapshot{Symbol: "BTC", Price: 1}

	inner.Err = errors.New("boom")
	again, err := c.Fetch(context.Background(), []string{"BTC"})
	require.NoError(t, err)
	require.Equal(t, 100.0, again["BTC"].Price, "caller mutation must not poison the cache")
}
