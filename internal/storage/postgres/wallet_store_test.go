package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

func TestWalletStore_AddAndGetByIndex(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	id, err := store.Add(ctx, &domain.Wallet{
		Index:    0,
		Nickname: "Wallet_0",
		Funder:   "FunderAddr0",
		Active:   true,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := store.GetByIndex(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Wallet_0", got.Nickname)
	assert.Equal(t, "FunderAddr0", got.Funder)
	assert.True(t, got.Active)
	assert.Nil(t, got.SigningKey)

	_, err = store.GetByIndex(ctx, 99)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWalletStore_DuplicateIndex(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	_, err := store.Add(ctx, &domain.Wallet{Index: 1, Nickname: "Wallet_1", Funder: "f1", Active: true})
	require.NoError(t, err)

	_, err = store.Add(ctx, &domain.Wallet{Index: 1, Nickname: "Wallet_1b", Funder: "f1b", Active: true})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestWalletStore_ListAndDeactivate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := store.Add(ctx, &domain.Wallet{Index: i, Nickname: "w", Funder: "f", Active: true})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, store.Deactivate(ctx, ids[1]))

	all, err := store.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 0, all[0].Index)

	active, err := store.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)

	assert.ErrorIs(t, store.Deactivate(ctx, 9999), storage.ErrNotFound)
}
