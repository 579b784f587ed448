package memory

import (
	"context"
	"sort"
	"sync"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// BookSnapshotStore is an in-memory implementation of storage.BookSnapshotStore.
type BookSnapshotStore struct {
	mu   sync.RWMutex
	data []*domain.BookSnapshot
}

// NewBookSnapshotStore creates a new in-memory book snapshot store.
func NewBookSnapshotStore() *BookSnapshotStore {
	return &BookSnapshotStore{}
}

// InsertBulk appends multiple snapshots.
func (s *BookSnapshotStore) InsertBulk(_ context.Context, snaps []*domain.BookSnapshot) error {
	for _, snap := range snaps {
		if snap == nil || snap.TokenID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snaps {
		snapCopy := *snap
		s.data = append(s.data, &snapCopy)
	}
	return nil
}

// GetByToken retrieves all snapshots for a token, ordered by captured_at ASC.
func (s *BookSnapshotStore) GetByToken(_ context.Context, tokenID string) ([]*domain.BookSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BookSnapshot
	for _, snap := range s.data {
		if snap.TokenID == tokenID {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CapturedAt < result[j].CapturedAt
	})

	return result, nil
}

// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive).
func (s *BookSnapshotStore) GetByTimeRange(_ context.Context, tokenID string, start, end int64) ([]*domain.BookSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BookSnapshot
	for _, snap := range s.data {
		if snap.TokenID == tokenID && snap.CapturedAt >= start && snap.CapturedAt <= end {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CapturedAt < result[j].CapturedAt
	})

	return result, nil
}

// Compile-time check that BookSnapshotStore implements the interface.
var _ storage.BookSnapshotStore = (*BookSnapshotStore)(nil)
