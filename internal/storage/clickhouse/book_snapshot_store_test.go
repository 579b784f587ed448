package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

func TestBookSnapshotStore_InsertBulkAndQuery(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBookSnapshotStore(conn)
	ctx := context.Background()

	snaps := []*domain.BookSnapshot{
		{TokenID: "tok-1", SessionID: "s1", BestBid: 0.51, BestAsk: 0.53, Spread: 0.02, CapturedAt: 200},
		{TokenID: "tok-1", SessionID: "s1", BestBid: 0.50, BestAsk: 0.54, Spread: 0.04, CapturedAt: 100},
		{TokenID: "tok-2", SessionID: "", BestBid: 0.10, BestAsk: 0.12, Spread: 0.02, CapturedAt: 150},
	}
	require.NoError(t, store.InsertBulk(ctx, snaps))

	got, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[0].CapturedAt)
	assert.Equal(t, 0.50, got[0].BestBid)
	assert.Equal(t, int64(200), got[1].CapturedAt)
	assert.Equal(t, "s1", got[1].SessionID)
}

func TestBookSnapshotStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBookSnapshotStore(conn)
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

func TestBookSnapshotStore_InvalidInput(t *testing.T) {
	store := NewBookSnapshotStore(nil)

	err := store.InsertBulk(context.Background(), []*domain.BookSnapshot{{TokenID: ""}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
