package memory

import (
	"context"
	"sort"
	"sync"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// SessionStore is an in-memory implementation of storage.SessionStore.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Session // keyed by session_id
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		data: make(map[string]*domain.Session),
	}
}

// Create adds a new session. Returns ErrDuplicateKey if session_id exists.
func (s *SessionStore) Create(_ context.Context, sess *domain.Session) error {
	if sess == nil || sess.SessionID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sess.SessionID]; exists {
		return storage.ErrDuplicateKey
	}

	sessionCopy := *sess
	s.data[sess.SessionID] = &sessionCopy
	return nil
}

// GetByID retrieves a session. Returns ErrNotFound if not exists.
func (s *SessionStore) GetByID(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.data[sessionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	sessionCopy := *sess
	return &sessionCopy, nil
}

// UpdateStatus writes the session status and optional end time.
func (s *SessionStore) UpdateStatus(_ context.Context, sessionID, status string, endTime *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.data[sessionID]
	if !exists {
		return storage.ErrNotFound
	}

	sess.Status = status
	if endTime != nil {
		t := *endTime
		sess.EndTime = &t
	}
	return nil
}

// GetRecent retrieves the most recently started sessions.
func (s *SessionStore) GetRecent(_ context.Context, limit int) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Session
	for _, sess := range s.data {
		sessionCopy := *sess
		result = append(result, &sessionCopy)
	}

	// Sort by start_time DESC
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime > result[j].StartTime
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Compile-time check that SessionStore implements the interface.
var _ storage.SessionStore = (*SessionStore)(nil)
