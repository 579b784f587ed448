package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

func TestSessionStore_CreateGetUpdate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	sess := &domain.Session{
		SessionID:   "sess-001",
		ConditionID: "cond-1",
		TokenID:     "tok-1",
		Volume:      5,
		Iterations:  3,
		WalletCount: 5,
		Status:      domain.SessionStatusRunning,
		StartTime:   1700000000000,
	}
	require.NoError(t, store.Create(ctx, sess))
	assert.ErrorIs(t, store.Create(ctx, sess), storage.ErrDuplicateKey)

	got, err := store.GetByID(ctx, "sess-001")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusRunning, got.Status)
	assert.Equal(t, 5.0, got.Volume)
	assert.Nil(t, got.EndTime)

	require.NoError(t, store.UpdateStatus(ctx, "sess-001", domain.SessionStatusCompleted, ptr(int64(1700000100000))))

	got, err = store.GetByID(ctx, "sess-001")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, got.Status)
	require.NotNil(t, got.EndTime)
	assert.Equal(t, int64(1700000100000), *got.EndTime)

	assert.ErrorIs(t, store.UpdateStatus(ctx, "missing", domain.SessionStatusFailed, nil), storage.ErrNotFound)
	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionStore_GetRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSessionStore(pool)
	ctx := context.Background()

	starts := []int64{100, 300, 200}
	for i, start := range starts {
		require.NoError(t, store.Create(ctx, &domain.Session{
			SessionID: string(rune('a' + i)),
			Status:    domain.SessionStatusRunning,
			StartTime: start,
		}))
	}

	recent, err := store.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(300), recent[0].StartTime)
	assert.Equal(t, int64(200), recent[1].StartTime)
}
