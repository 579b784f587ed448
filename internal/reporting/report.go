// Package reporting renders read-only views over recorded sessions, trades
// and chain steps. Nothing here feeds back into trading decisions.
package reporting

// SessionRow is one line of the recent-sessions view.
type SessionRow struct {
	SessionID   string
	ConditionID string
	TokenID     string
	Status      string
	Volume      float64
	Iterations  int
	WalletCount int
	TradeCount  int
	StartTime   int64  // unix ms
	EndTime     *int64 // unix ms, nil while running
}

// TradeRow is one trade leg joined with its wallet.
type TradeRow struct {
	Nickname    string
	WalletIndex int
	Side        string
	Price       float64
	Size        float64
	TradeType   string
	OrderID     string
	LoggedAt    int64 // unix ms
}

// StepRow is one planned chain step joined with its wallet.
type StepRow struct {
	Iteration     int
	SequenceOrder int
	Nickname      string
	IsInitialBuy  bool
	IsFinalSell   bool
}

// SessionDetail is the full view of one session.
type SessionDetail struct {
	Session SessionRow
	Trades  []TradeRow
	Steps   []StepRow

	// FilledVolume is the sum of leg sizes; AvgPrice the size-weighted
	// mean leg price, 0 when there are no legs.
	FilledVolume float64
	AvgPrice     float64
}

// WalletRow is one line of the wallet-activity view.
type WalletRow struct {
	Nickname    string
	WalletIndex int
	Funder      string
	Active      bool
	TradeCount  int
	Volume      float64
	LastTradeAt int64 // unix ms, 0 when the wallet never traded
}
