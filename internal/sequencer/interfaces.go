// Package sequencer implements the chained order-matching walk: an initial
// acquisition on the head account followed by pairwise hand-offs down the
// chain, reconciled against settled position deltas.
package sequencer

import (
	"context"

	"crossfill/internal/domain"
)

// Oracle reads settled positions. The only source of truth for whether a
// trade actually happened; order acknowledgements are never trusted.
type Oracle interface {
	SettledPosition(ctx context.Context, funder, conditionID, tokenID string) (float64, error)
}

// Books reads top-of-book prices. Either side may be nil when empty.
type Books interface {
	BestBidAsk(ctx context.Context, tokenID string) (bid, ask *float64, err error)
}

// Trader submits and cancels orders for one account.
type Trader interface {
	Submit(ctx context.Context, args domain.OrderArgs) (string, error)
	Cancel(ctx context.Context, orderID string) error
}

// TraderFactory builds the trader for a wallet. Called once per wallet per
// chain walk.
type TraderFactory func(w domain.Wallet) Trader

// Recorder is a fire-and-forget audit sink. Calls must never block and
// failures must never influence trading decisions.
type Recorder interface {
	RecordLeg(leg domain.TradeLeg)
	RecordSteps(steps []domain.ChainStep)
}
