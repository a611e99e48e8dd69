package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rajchodisetti/paper-trader/internal/engine"
	"github.com/Rajchodisetti/paper-trader/internal/risk"
)

type stubProvider struct {
	snap engine.Snapshot
}

func (s *stubProvider) Snapshot() engine.Snapshot { return s.snap }

func testSnapshot(updatedAt time.Time) engine.Snapshot {
	return engine.Snapshot{
		UpdatedAt: updatedAt,
		Cycle:     7,
		Account: engine.Account{
			Cash: 40, Equity: 50.5, PeakEquity: 52, MaxDrawdown: 0.04,
			Trades: 3, Wins: 2, Losses: 1,
		},
		Policy: risk.Policy{Aggression: 0.2, EntryThreshold: 1.5},
		Market: []engine.MarketEntry{
			{Symbol: "BTC", Price: 65000, Change24h: 2.1, Score: 3.2},
		},
		Signals: []engine.Signal{{At: updatedAt, Text: "BUY BTC @ 65000.0000 size=10.00 score=3.20"}},
	}
}

func newTestServer(snap engine.Snapshot) *Server {
	return New(Config{
		Addr:         "127.0.0.1:0",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		StaleAfter:   90 * time.Second,
	}, &stubProvider{snap: snap})
}

func TestSnapshotEndpoint(t *testing.T) {
	s := newTestServer(testSnapshot(time.Now()))

	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var v view
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.False(t, v.ViewStale)
	require.Equal(t, int64(7), v.Cycle)
	require.Equal(t, 40.0, v.Account.Cash)
	require.Len(t, v.Market, 1)
}

func TestSnapshotFlaggedStaleWhenOld(t *testing.T) {
	s := newTestServer(testSnapshot(time.Now().Add(-10 * time.Minute)))

	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	var v view
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	require.True(t, v.ViewStale)
	require.Greater(t, v.AgeSeconds, 500.0)
}

func TestHealthReflectsStaleness(t *testing.T) {
	fresh := newTestServer(testSnapshot(time.Now()))
	rec := httptest.NewRecorder()
	fresh.httpSrv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	stale := newTestServer(testSnapshot(time.Time{}))
	rec = httptest.NewRecorder()
	stale.httpSrv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDashboardRenders(t *testing.T) {
	s := newTestServer(testSnapshot(time.Now()))

	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "BTC"))
	require.True(t, strings.Contains(body, "Paper Trader"))
	require.True(t, strings.Contains(body, "BUY BTC"))
}

func TestRequestIDPreserved(t *testing.T) {
	s := newTestServer(testSnapshot(time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)

	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
