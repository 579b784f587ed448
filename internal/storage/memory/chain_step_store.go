package memory

import (
	"context"
	"sort"
	"sync"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// ChainStepStore is an in-memory implementation of storage.ChainStepStore.
type ChainStepStore struct {
	mu   sync.RWMutex
	data []*domain.ChainStep
}

// NewChainStepStore creates a new in-memory chain step store.
func NewChainStepStore() *ChainStepStore {
	return &ChainStepStore{}
}

// Insert appends one chain step.
func (s *ChainStepStore) Insert(_ context.Context, step *domain.ChainStep) error {
	if step == nil || step.SessionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stepCopy := *step
	s.data = append(s.data, &stepCopy)
	return nil
}

// InsertBulk appends multiple steps. All-or-nothing: validation runs first.
func (s *ChainStepStore) InsertBulk(_ context.Context, steps []*domain.ChainStep) error {
	for _, step := range steps {
		if step == nil || step.SessionID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, step := range steps {
		stepCopy := *step
		s.data = append(s.data, &stepCopy)
	}
	return nil
}

// GetBySession retrieves all steps for a session, ordered by iteration ASC,
// sequence_order ASC.
func (s *ChainStepStore) GetBySession(_ context.Context, sessionID string) ([]*domain.ChainStep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ChainStep
	for _, step := range s.data {
		if step.SessionID == sessionID {
			stepCopy := *step
			result = append(result, &stepCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Iteration != result[j].Iteration {
			return result[i].Iteration < result[j].Iteration
		}
		return result[i].SequenceOrder < result[j].SequenceOrder
	})

	return result, nil
}

// Compile-time check that ChainStepStore implements the interface.
var _ storage.ChainStepStore = (*ChainStepStore)(nil)
