package clob

// Raw wire types for the venue REST API. Fields the sequencer does not use
// are omitted.

// rawLevel is one price level as returned by the book endpoint.
type rawLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// rawBook is the /book response.
type rawBook struct {
	Market string     `json:"market"`
	Asset  string     `json:"asset_id"`
	Bids   []rawLevel `json:"bids"`
	Asks   []rawLevel `json:"asks"`
}

// rawToken is one outcome token within a market payload.
type rawToken struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
}

// rawMarket is a market payload from /markets and /rewards/markets.
type rawMarket struct {
	ConditionID     string     `json:"condition_id"`
	Question        string     `json:"question"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Active          bool       `json:"active"`
	Closed          bool       `json:"closed"`
	AcceptingOrders bool       `json:"accepting_orders"`
	MinimumTickSize string     `json:"minimum_tick_size"`
	Tokens          []rawToken `json:"tokens"`
}

// marketsPage is a cursor-paginated /markets response.
type marketsPage struct {
	Data       []rawMarket `json:"data"`
	NextCursor string      `json:"next_cursor"`
	Limit      int         `json:"limit"`
	Count      int         `json:"count"`
}

// rawPosition is one entry of the /positions response.
type rawPosition struct {
	Asset   string  `json:"asset"`
	Outcome string  `json:"outcome"`
	Size    float64 `json:"size"`
	AvgCost float64 `json:"avgPrice"`
}

// orderResponse is the acknowledgement for a submitted order.
type orderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderID"`
	ErrMsg  string `json:"errorMsg"`
}

// cancelResponse is the acknowledgement for a cancel.
type cancelResponse struct {
	Canceled    []string          `json:"canceled"`
	NotCanceled map[string]string `json:"not_canceled"`
}
