package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// HTTPClient pulls snapshots from a CoinGecko-style markets endpoint. The
// request budget is enforced locally with a token bucket and the endpoint is
// wrapped in a circuit breaker so a flapping provider is not hammered.
type HTTPClient struct {
	baseURL    string
	vsCurrency string
	client     *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

type HTTPConfig struct {
	BaseURL          string
	VsCurrency       string
	Timeout          time.Duration
	RequestsPerMin   float64
	BreakerThreshold uint32 // consecutive failures before the breaker opens
	BreakerTimeout   time.Duration
}

func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	settings := gobreaker.Settings{
		Name:    "price-feed",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("feed breaker state change")
		},
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		vsCurrency: cfg.VsCurrency,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerMin/60.0), 1),
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// marketRow mirrors the provider payload. Unknown fields are ignored,
// malformed rows are skipped during conversion.
type marketRow struct {
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"current_price"`
	Change24h *float64 `json:"price_change_percentage_24h"`
	Volume    *float64 `json:"total_volume"`
}

func (c *HTTPClient) Fetch(ctx context.Context, symbols []string) (map[string]Snapshot, error) {
	if !c.limiter.Allow() {
		return nil, NewRateLimitError("local request budget exhausted")
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, symbols)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, NewBreakerOpenError(err)
		}
		return nil, err
	}
	return result.(map[string]Snapshot), nil
}

func (c *HTTPClient) fetch(ctx context.Context, symbols []string) (map[string]Snapshot, error) {
	q := url.Values{}
	q.Set("vs_currency", c.vsCurrency)
	q.Set("symbols", strings.ToLower(strings.Join(symbols, ",")))
	q.Set("price_change_percentage", "24h")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coins/markets?"+q.Encode(), nil)
	if err != nil {
		return nil, NewNetworkError("create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewNetworkError("http request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewRateLimitError("provider returned 429")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, NewStatusError(resp.StatusCode)
	}

	var rows []marketRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, NewDecodeError("parse markets payload", err)
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[strings.ToUpper(s)] = true
	}

	out := make(map[string]Snapshot, len(symbols))
	for _, row := range rows {
		if row.Price == nil {
			continue
		}
		snap := Snapshot{
			Symbol: row.Symbol,
			Price:  *row.Price,
		}
		if row.Change24h != nil {
			snap.Change24h = *row.Change24h
		}
		if row.Volume != nil {
			snap.Volume = *row.Volume
		}
		if err := Validate(&snap); err != nil {
			log.Debug().Err(err).Msg("skipping malformed market row")
			continue
		}
		if len(wanted) > 0 && !wanted[snap.Symbol] {
			continue
		}
		out[snap.Symbol] = snap
	}
	if len(out) == 0 {
		return nil, NewDecodeError(fmt.Sprintf("no usable rows in %d entries", len(rows)), nil)
	}
	return out, nil
}
