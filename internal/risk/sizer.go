package risk

// Sizer converts account cash and the current aggression level into a
// currency amount for a candidate entry.
type Sizer struct {
	minTradeUSD float64
}

func NewSizer(minTradeUSD float64) *Sizer {
	return &Sizer{minTradeUSD: minTradeUSD}
}

// SizeForEntry returns the cash to commit, clamped to the cash available.
// Amounts below the minimum trade floor return 0 so dust entries are
// rejected outright. Aggression bounds are owned by the adaptive controller
// and are not re-clamped here.
func (s *Sizer) SizeForEntry(cash, aggression float64) float64 {
	amount := cash * aggression
	if amount > cash {
		amount = cash
	}
	if amount < s.minTradeUSD {
		return 0
	}
	return amount
}
