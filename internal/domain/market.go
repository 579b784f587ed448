package domain

// Token is one tradable outcome of a market.
type Token struct {
	TokenID string
	Outcome string // outcome label, e.g. "Yes" / "No"
}

// Market is a venue market descriptor as returned by the listing API.
type Market struct {
	ConditionID     string
	Question        string
	Description     string
	Category        string
	Active          bool
	Closed          bool
	AcceptingOrders bool
	Tokens          []Token

	// Filled in by the scanner.
	Spread float64
	Price  float64
}

// Tradable reports whether the market is open and accepting orders.
func (m Market) Tradable() bool {
	return m.Active && !m.Closed && m.AcceptingOrders
}
