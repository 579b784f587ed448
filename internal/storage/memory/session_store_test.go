package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

func TestSessionStore_CreateAndGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	sess := &domain.Session{
		SessionID:   "sess-1",
		ConditionID: "cond-1",
		TokenID:     "tok-1",
		Volume:      5,
		Iterations:  2,
		WalletCount: 5,
		Status:      domain.SessionStatusRunning,
		StartTime:   1000,
	}
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.GetByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusRunning, got.Status)
	assert.Nil(t, got.EndTime)

	assert.ErrorIs(t, store.Create(ctx, sess), storage.ErrDuplicateKey)
}

func TestSessionStore_UpdateStatus(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &domain.Session{
		SessionID: "sess-1",
		Status:    domain.SessionStatusRunning,
		StartTime: 1000,
	}))

	end := int64(2000)
	require.NoError(t, store.UpdateStatus(ctx, "sess-1", domain.SessionStatusCompleted, &end))

	got, err := store.GetByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, got.Status)
	require.NotNil(t, got.EndTime)
	assert.Equal(t, int64(2000), *got.EndTime)

	assert.ErrorIs(t, store.UpdateStatus(ctx, "missing", domain.SessionStatusFailed, nil), storage.ErrNotFound)
}

func TestSessionStore_GetRecent(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	for i, start := range []int64{100, 300, 200} {
		require.NoError(t, store.Create(ctx, &domain.Session{
			SessionID: string(rune('a' + i)),
			StartTime: start,
		}))
	}

	recent, err := store.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(300), recent[0].StartTime)
	assert.Equal(t, int64(200), recent[1].StartTime)
}
