// Package memory provides in-memory storage implementations for tests and
// dry runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu     sync.RWMutex
	data   map[int]*domain.Wallet // keyed by wallet index
	nextID int64
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		data:   make(map[int]*domain.Wallet),
		nextID: 1,
	}
}

// Add registers a wallet. Returns ErrDuplicateKey if the index is taken.
func (s *WalletStore) Add(_ context.Context, w *domain.Wallet) (int64, error) {
	if w == nil || w.Funder == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[w.Index]; exists {
		return 0, storage.ErrDuplicateKey
	}

	// Store a copy without the signing key; keys never persist.
	walletCopy := *w
	walletCopy.ID = s.nextID
	walletCopy.SigningKey = nil
	s.data[w.Index] = &walletCopy

	s.nextID++
	return walletCopy.ID, nil
}

// GetByIndex retrieves a wallet by index. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByIndex(_ context.Context, index int) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.data[index]
	if !exists {
		return nil, storage.ErrNotFound
	}

	walletCopy := *w
	return &walletCopy, nil
}

// List retrieves wallets ordered by index.
func (s *WalletStore) List(_ context.Context, activeOnly bool) ([]*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Wallet
	for _, w := range s.data {
		if activeOnly && !w.Active {
			continue
		}
		walletCopy := *w
		result = append(result, &walletCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Index < result[j].Index
	})

	return result, nil
}

// Deactivate marks a wallet inactive. Returns ErrNotFound if no such ID.
func (s *WalletStore) Deactivate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.data {
		if w.ID == id {
			w.Active = false
			return nil
		}
	}
	return storage.ErrNotFound
}

// Compile-time check that WalletStore implements the interface.
var _ storage.WalletStore = (*WalletStore)(nil)
