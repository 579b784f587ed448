package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// SessionStore implements storage.SessionStore using PostgreSQL.
type SessionStore struct {
	pool *Pool
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(pool *Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SessionStore = (*SessionStore)(nil)

// Create adds a new session. Returns ErrDuplicateKey if session_id exists.
func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if sess == nil || sess.SessionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trading_sessions (
			session_id, condition_id, token_id, volume, iterations, wallet_count,
			status, start_time, end_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		sess.SessionID,
		sess.ConditionID,
		sess.TokenID,
		sess.Volume,
		sess.Iterations,
		sess.WalletCount,
		sess.Status,
		sess.StartTime,
		sess.EndTime,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID retrieves a session. Returns ErrNotFound if not exists.
func (s *SessionStore) GetByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, condition_id, token_id, volume, iterations, wallet_count,
		       status, start_time, end_time
		FROM trading_sessions
		WHERE session_id = $1
	`

	row := s.pool.QueryRow(ctx, query, sessionID)
	sess, err := scanSession(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}
	return sess, nil
}

// UpdateStatus writes the session status and optional end time. The only
// mutation sessions allow.
func (s *SessionStore) UpdateStatus(ctx context.Context, sessionID, status string, endTime *int64) error {
	query := `
		UPDATE trading_sessions
		SET status = $2, end_time = COALESCE($3, end_time)
		WHERE session_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, sessionID, status, endTime)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetRecent retrieves the most recently started sessions.
func (s *SessionStore) GetRecent(ctx context.Context, limit int) ([]*domain.Session, error) {
	query := `
		SELECT session_id, condition_id, token_id, volume, iterations, wallet_count,
		       status, start_time, end_time
		FROM trading_sessions
		ORDER BY start_time DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return sessions, nil
}

// scanSession scans a single row into a Session.
func scanSession(row pgx.Row) (*domain.Session, error) {
	var sess domain.Session
	err := row.Scan(
		&sess.SessionID,
		&sess.ConditionID,
		&sess.TokenID,
		&sess.Volume,
		&sess.Iterations,
		&sess.WalletCount,
		&sess.Status,
		&sess.StartTime,
		&sess.EndTime,
	)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}
