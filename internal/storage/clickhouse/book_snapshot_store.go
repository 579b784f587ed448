package clickhouse

import (
	"context"
	"fmt"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// BookSnapshotStore implements storage.BookSnapshotStore using ClickHouse.
// MergeTree does not enforce uniqueness; snapshots are a pure append stream
// keyed for time-range scans.
type BookSnapshotStore struct {
	conn *Conn
}

// NewBookSnapshotStore creates a new BookSnapshotStore.
func NewBookSnapshotStore(conn *Conn) *BookSnapshotStore {
	return &BookSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BookSnapshotStore = (*BookSnapshotStore)(nil)

// InsertBulk appends multiple snapshots in one batch.
func (s *BookSnapshotStore) InsertBulk(ctx context.Context, snaps []*domain.BookSnapshot) error {
	for _, snap := range snaps {
		if snap == nil || snap.TokenID == "" {
			return storage.ErrInvalidInput
		}
	}
	if len(snaps) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO book_snapshots (
			token_id, session_id, best_bid, best_ask, spread, captured_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snaps {
		err = batch.Append(
			snap.TokenID, snap.SessionID,
			snap.BestBid, snap.BestAsk, snap.Spread,
			uint64(snap.CapturedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByToken retrieves all snapshots for a token, ordered by captured_at ASC.
func (s *BookSnapshotStore) GetByToken(ctx context.Context, tokenID string) ([]*domain.BookSnapshot, error) {
	query := `
		SELECT token_id, session_id, best_bid, best_ask, spread, captured_at
		FROM book_snapshots
		WHERE token_id = ?
		ORDER BY captured_at ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("query by token: %w", err)
	}
	defer rows.Close()

	return scanBookSnapshots(rows)
}

// GetByTimeRange retrieves snapshots for a token within [start, end] (inclusive).
func (s *BookSnapshotStore) GetByTimeRange(ctx context.Context, tokenID string, start, end int64) ([]*domain.BookSnapshot, error) {
	query := `
		SELECT token_id, session_id, best_bid, best_ask, spread, captured_at
		FROM book_snapshots
		WHERE token_id = ? AND captured_at >= ? AND captured_at <= ?
		ORDER BY captured_at ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanBookSnapshots(rows)
}

// chRows is the minimal row iterator both Query results and tests satisfy.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanBookSnapshots scans multiple rows.
func scanBookSnapshots(rows chRows) ([]*domain.BookSnapshot, error) {
	var snaps []*domain.BookSnapshot

	for rows.Next() {
		var snap domain.BookSnapshot
		var capturedAt uint64

		err := rows.Scan(
			&snap.TokenID, &snap.SessionID,
			&snap.BestBid, &snap.BestAsk, &snap.Spread,
			&capturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan book snapshot row: %w", err)
		}

		snap.CapturedAt = int64(capturedAt)
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book snapshot rows: %w", err)
	}

	return snaps, nil
}
