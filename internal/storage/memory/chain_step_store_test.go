package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

func TestChainStepStore_OrderedBySequence(t *testing.T) {
	store := NewChainStepStore()
	ctx := context.Background()

	steps := []*domain.ChainStep{
		{SessionID: "s1", Iteration: 1, SequenceOrder: 0},
		{SessionID: "s1", Iteration: 0, SequenceOrder: 1},
		{SessionID: "s1", Iteration: 0, SequenceOrder: 0, IsInitialBuy: true},
		{SessionID: "other", Iteration: 0, SequenceOrder: 0},
	}
	require.NoError(t, store.InsertBulk(ctx, steps))

	got, err := store.GetBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[0].IsInitialBuy)
	assert.Equal(t, 0, got[0].Iteration)
	assert.Equal(t, 1, got[1].SequenceOrder)
	assert.Equal(t, 1, got[2].Iteration)
}

func TestChainStepStore_InsertBulkValidatesFirst(t *testing.T) {
	store := NewChainStepStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.ChainStep{
		{SessionID: "s1"},
		{SessionID: ""},
	})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	got, err := store.GetBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
