package domain

// Side is the taker direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderArgs describes a GTC limit order to submit against a token book.
type OrderArgs struct {
	TokenID string
	Side    Side
	Price   float64
	Size    float64
}

// BookLevel is a single price level of an order book side.
type BookLevel struct {
	Price float64
	Size  float64
}

// Book holds both sides of a token's order book.
type Book struct {
	TokenID string
	Bids    []BookLevel
	Asks    []BookLevel
}

// BestBid returns the maximum bid price, or nil when the bid side is empty.
func (b Book) BestBid() *float64 {
	return bestOf(b.Bids, func(best, p float64) bool { return p > best })
}

// BestAsk returns the minimum ask price, or nil when the ask side is empty.
func (b Book) BestAsk() *float64 {
	return bestOf(b.Asks, func(best, p float64) bool { return p < best })
}

func bestOf(levels []BookLevel, better func(best, p float64) bool) *float64 {
	if len(levels) == 0 {
		return nil
	}
	best := levels[0].Price
	for _, l := range levels[1:] {
		if better(best, l.Price) {
			best = l.Price
		}
	}
	return &best
}

// BookSnapshot is a captured NBBO observation, archived for analytics.
type BookSnapshot struct {
	TokenID    string
	SessionID  string // empty when captured outside a session
	BestBid    float64
	BestAsk    float64
	Spread     float64
	CapturedAt int64 // unix ms
}
