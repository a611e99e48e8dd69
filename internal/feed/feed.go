package feed

import (
	"context"
	"fmt"
	"strings"
)

// Snapshot is one instrument's market state, replaced wholesale each fetch.
type Snapshot struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
	Volume    float64 `json:"volume"`
}

// Client fetches current snapshots for a symbol universe.
type Client interface {
	Fetch(ctx context.Context, symbols []string) (map[string]Snapshot, error)
}

// Validate normalizes and rejects malformed snapshots at the boundary so
// nothing downstream has to re-check prices.
func Validate(s *Snapshot) error {
	s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
	if s.Symbol == "" {
		return fmt.Errorf("empty symbol")
	}
	if s.Price <= 0 {
		return fmt.Errorf("invalid price %.8f for %s", s.Price, s.Symbol)
	}
	if s.Volume < 0 {
		return fmt.Errorf("negative volume for %s", s.Symbol)
	}
	return nil
}

// FetchError classifies feed failures. All kinds are transient: the caller
// falls back to the last good snapshot and retries next cycle.
type FetchError struct {
	Kind    string // "network", "status", "decode", "rate_limit", "breaker_open"
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s (%v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error { return e.Cause }

func NewNetworkError(message string, cause error) *FetchError {
	return &FetchError{Kind: "network", Message: message, Cause: cause}
}

func NewStatusError(code int) *FetchError {
	return &FetchError{Kind: "status", Message: fmt.Sprintf("unexpected status %d", code)}
}

func NewDecodeError(message string, cause error) *FetchError {
	return &FetchError{Kind: "decode", Message: message, Cause: cause}
}

func NewRateLimitError(message string) *FetchError {
	return &FetchError{Kind: "rate_limit", Message: message}
}

func NewBreakerOpenError(cause error) *FetchError {
	return &FetchError{Kind: "breaker_open", Message: "circuit breaker open", Cause: cause}
}
