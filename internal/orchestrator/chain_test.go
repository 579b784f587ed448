package orchestrator

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/domain"
)

func makeRoster(n int) []domain.Wallet {
	roster := make([]domain.Wallet, n)
	for i := range roster {
		roster[i] = domain.Wallet{
			ID:       int64(i + 1),
			Index:    i,
			Nickname: fmt.Sprintf("Wallet_%d", i),
			Funder:   fmt.Sprintf("funder-%d", i),
		}
	}
	return roster
}

func TestFirstChain(t *testing.T) {
	roster := makeRoster(8)

	chain, err := FirstChain(roster, 5)
	require.NoError(t, err)
	require.Len(t, chain, 5)
	for i, w := range chain {
		assert.Equal(t, i, w.Index)
	}

	_, err = FirstChain(roster[:3], 5)
	assert.Error(t, err)

	_, err = FirstChain(roster, 0)
	assert.Error(t, err)
}

func TestNextChainAnchoredAtTail(t *testing.T) {
	roster := makeRoster(10)
	tail := roster[7]
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		chain, err := NextChain(roster, tail, 5, rng)
		require.NoError(t, err)
		require.Len(t, chain, 5)

		assert.Equal(t, tail.Index, chain.Head().Index, "chain must start at the previous tail")

		seen := map[int]bool{}
		for _, w := range chain {
			assert.False(t, seen[w.Index], "wallet %d repeated within one chain", w.Index)
			seen[w.Index] = true
		}
		for _, w := range chain[1:] {
			assert.NotEqual(t, tail.Index, w.Index, "tail sampled into the body of the chain")
		}
	}
}

func TestNextChainRosterTooSmall(t *testing.T) {
	roster := makeRoster(4)
	rng := rand.New(rand.NewSource(1))

	_, err := NextChain(roster, roster[0], 5, rng)
	assert.Error(t, err)

	// Exactly enough: tail + 4 others.
	chain, err := NextChain(makeRoster(5), makeRoster(5)[0], 5, rng)
	require.NoError(t, err)
	assert.Len(t, chain, 5)
}

func TestNextChainRejectsShortChains(t *testing.T) {
	roster := makeRoster(5)
	rng := rand.New(rand.NewSource(1))

	_, err := NextChain(roster, roster[0], 1, rng)
	assert.Error(t, err)
}
