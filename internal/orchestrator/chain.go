package orchestrator

import (
	"fmt"
	"math/rand"

	"crossfill/internal/domain"
)

// FirstChain returns the fixed opening chain: the first n wallets in roster
// order. The opening chain always starts from wallet 0 so acquisition funds
// flow from a known account.
func FirstChain(roster []domain.Wallet, n int) (domain.Chain, error) {
	if n < 1 {
		return nil, fmt.Errorf("chain length must be positive, got %d", n)
	}
	if len(roster) < n {
		return nil, fmt.Errorf("need at least %d wallets, have %d", n, len(roster))
	}
	return domain.Chain(append([]domain.Wallet(nil), roster[:n]...)), nil
}

// NextChain builds a chain of length n anchored at the previous chain's
// tail, filling the remaining slots with distinct wallets sampled from the
// roster. The tail is excluded from the sample so it appears exactly once,
// at the head.
func NextChain(roster []domain.Wallet, tail domain.Wallet, n int, rng *rand.Rand) (domain.Chain, error) {
	if n < 2 {
		return nil, fmt.Errorf("chain length must be at least 2 for a hand-off, got %d", n)
	}

	pool := make([]domain.Wallet, 0, len(roster))
	for _, w := range roster {
		if w.Index != tail.Index {
			pool = append(pool, w)
		}
	}
	if len(pool) < n-1 {
		return nil, fmt.Errorf("need %d distinct wallets besides %s, have %d", n-1, tail.Nickname, len(pool))
	}

	chain := make(domain.Chain, 0, n)
	chain = append(chain, tail)
	for _, i := range rng.Perm(len(pool))[:n-1] {
		chain = append(chain, pool[i])
	}
	return chain, nil
}
