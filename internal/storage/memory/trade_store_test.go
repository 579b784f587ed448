package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

func TestTradeStore_InsertAndQuery(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	legs := []*domain.TradeLeg{
		{SessionID: "s1", WalletID: 1, Side: domain.SideBuy, TradeType: domain.TradeTypeInitialBuy, LoggedAt: 300},
		{SessionID: "s1", WalletID: 2, Side: domain.SideSell, TradeType: domain.TradeTypeChainMatch, LoggedAt: 100},
		{SessionID: "s2", WalletID: 1, Side: domain.SideSell, TradeType: domain.TradeTypeFinalSell, LoggedAt: 200},
	}
	for _, leg := range legs {
		require.NoError(t, store.Insert(ctx, leg))
	}

	bySession, err := store.GetBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, bySession, 2)
	// Ordered by logged_at ASC.
	assert.Equal(t, int64(100), bySession[0].LoggedAt)
	assert.Equal(t, int64(300), bySession[1].LoggedAt)

	byWallet, err := store.GetByWallet(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byWallet, 2)
	assert.Equal(t, "s2", byWallet[0].SessionID)
}

func TestTradeStore_InvalidInput(t *testing.T) {
	store := NewTradeStore()

	assert.ErrorIs(t, store.Insert(context.Background(), nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(context.Background(), &domain.TradeLeg{}), storage.ErrInvalidInput)
}
