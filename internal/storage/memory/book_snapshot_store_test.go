package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/domain"
)

func TestBookSnapshotStore_GetByToken(t *testing.T) {
	store := NewBookSnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.BookSnapshot{
		{TokenID: "tok-1", BestBid: 0.51, BestAsk: 0.53, Spread: 0.02, CapturedAt: 200},
		{TokenID: "tok-1", BestBid: 0.50, BestAsk: 0.54, Spread: 0.04, CapturedAt: 100},
		{TokenID: "tok-2", BestBid: 0.10, BestAsk: 0.12, Spread: 0.02, CapturedAt: 150},
	}))

	got, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[0].CapturedAt)
	assert.Equal(t, int64(200), got[1].CapturedAt)
}

func TestBookSnapshotStore_GetByTimeRange(t *testing.T) {
	store := NewBookSnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.BookSnapshot{
		{TokenID: "tok-1", CapturedAt: 100},
		{TokenID: "tok-1", CapturedAt: 200},
		{TokenID: "tok-1", CapturedAt: 300},
	}))

	got, err := store.GetByTimeRange(ctx, "tok-1", 100, 200)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[0].CapturedAt)
	assert.Equal(t, int64(200), got[1].CapturedAt)
}
