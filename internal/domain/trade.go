package domain

// Trade types tag the role a leg played in the chain walk.
const (
	TradeTypeInitialBuy = "initial_buy"
	TradeTypeChainMatch = "chain_match"
	TradeTypeDivertSell = "divert_sell"
	TradeTypeFinalSell  = "final_sell"
)

// TradeLeg is one audit entry for a submitted order. Write-once; the
// sequencer never reads legs back to make control decisions.
type TradeLeg struct {
	SessionID string
	WalletID  int64
	TokenID   string
	Side      Side
	Price     float64
	Size      float64
	TradeType string
	OrderID   string
	LoggedAt  int64 // unix ms
}

// ChainStep is one audit entry for a wallet's position in a planned chain.
// Append-only; consumed by reporting, never by the sequencer.
type ChainStep struct {
	SessionID     string
	Iteration     int
	SequenceOrder int
	WalletID      int64
	IsInitialBuy  bool
	IsFinalSell   bool
}
