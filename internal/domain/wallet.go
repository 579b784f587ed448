package domain

import "crypto/ed25519"

// Wallet identifies a funding address and the key used to sign its orders.
// Wallets are constructed once at session start and held immutably for the
// session's duration.
type Wallet struct {
	ID         int64  // database identifier
	Index      int    // CSV row order, used for naming/logging only
	Nickname   string // "Wallet_<index>"
	Funder     string // base58 funding address
	SigningKey ed25519.PrivateKey
	Active     bool
}

// Chain is the ordered hand-off path for one trading iteration.
// A chain needs at least one wallet for an initial acquisition and at
// least two for any hand-off to occur.
type Chain []Wallet

// Head returns the first wallet of the chain.
func (c Chain) Head() Wallet {
	return c[0]
}

// Tail returns the last wallet of the chain.
func (c Chain) Tail() Wallet {
	return c[len(c)-1]
}
