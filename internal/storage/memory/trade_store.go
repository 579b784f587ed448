package memory

import (
	"context"
	"sort"
	"sync"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data []*domain.TradeLeg
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{}
}

// Insert appends a trade leg.
func (s *TradeStore) Insert(_ context.Context, leg *domain.TradeLeg) error {
	if leg == nil || leg.SessionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	legCopy := *leg
	s.data = append(s.data, &legCopy)
	return nil
}

// GetBySession retrieves all legs for a session, ordered by logged_at ASC.
func (s *TradeStore) GetBySession(_ context.Context, sessionID string) ([]*domain.TradeLeg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeLeg
	for _, leg := range s.data {
		if leg.SessionID == sessionID {
			legCopy := *leg
			result = append(result, &legCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LoggedAt < result[j].LoggedAt
	})

	return result, nil
}

// GetByWallet retrieves all legs for a wallet, ordered by logged_at ASC.
func (s *TradeStore) GetByWallet(_ context.Context, walletID int64) ([]*domain.TradeLeg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeLeg
	for _, leg := range s.data {
		if leg.WalletID == walletID {
			legCopy := *leg
			result = append(result, &legCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LoggedAt < result[j].LoggedAt
	})

	return result, nil
}

// Compile-time check that TradeStore implements the interface.
var _ storage.TradeStore = (*TradeStore)(nil)
