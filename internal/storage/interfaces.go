package storage

import (
	"context"

	"crossfill/internal/domain"
)

// WalletStore provides access to the wallet roster. Signing keys are never
// persisted; implementations store a key digest at most.
type WalletStore interface {
	// Add registers a wallet and returns its ID. Returns ErrDuplicateKey
	// if the wallet index is already registered.
	Add(ctx context.Context, w *domain.Wallet) (int64, error)

	// GetByIndex retrieves a wallet by its CSV index. Returns ErrNotFound
	// if not registered. The returned wallet carries no signing key.
	GetByIndex(ctx context.Context, index int) (*domain.Wallet, error)

	// List retrieves wallets ordered by index, optionally only active ones.
	List(ctx context.Context, activeOnly bool) ([]*domain.Wallet, error)

	// Deactivate marks a wallet inactive.
	Deactivate(ctx context.Context, id int64) error
}

// SessionStore provides access to trading_sessions storage.
type SessionStore interface {
	// Create adds a new session. Returns ErrDuplicateKey if session_id exists.
	Create(ctx context.Context, s *domain.Session) error

	// GetByID retrieves a session. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, sessionID string) (*domain.Session, error)

	// UpdateStatus writes the session status and optional end time. The
	// only mutation sessions allow.
	UpdateStatus(ctx context.Context, sessionID, status string, endTime *int64) error

	// GetRecent retrieves the most recently started sessions.
	GetRecent(ctx context.Context, limit int) ([]*domain.Session, error)
}

// TradeStore provides access to the append-only trades log.
type TradeStore interface {
	// Insert appends a trade leg.
	Insert(ctx context.Context, leg *domain.TradeLeg) error

	// GetBySession retrieves all legs for a session, ordered by logged_at ASC.
	GetBySession(ctx context.Context, sessionID string) ([]*domain.TradeLeg, error)

	// GetByWallet retrieves all legs for a wallet, ordered by logged_at ASC.
	GetByWallet(ctx context.Context, walletID int64) ([]*domain.TradeLeg, error)
}

// ChainStepStore provides access to the append-only chain_steps audit log.
type ChainStepStore interface {
	// Insert appends one chain step.
	Insert(ctx context.Context, step *domain.ChainStep) error

	// InsertBulk appends multiple steps atomically.
	InsertBulk(ctx context.Context, steps []*domain.ChainStep) error

	// GetBySession retrieves all steps for a session, ordered by
	// iteration ASC, sequence_order ASC.
	GetBySession(ctx context.Context, sessionID string) ([]*domain.ChainStep, error)
}

// BookSnapshotStore provides access to the book_snapshots timeseries.
type BookSnapshotStore interface {
	// InsertBulk appends multiple snapshots.
	InsertBulk(ctx context.Context, snaps []*domain.BookSnapshot) error

	// GetByToken retrieves all snapshots for a token, ordered by captured_at ASC.
	GetByToken(ctx context.Context, tokenID string) ([]*domain.BookSnapshot, error)

	// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, tokenID string, start, end int64) ([]*domain.BookSnapshot, error)
}
