package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// Insert appends a trade leg.
func (s *TradeStore) Insert(ctx context.Context, leg *domain.TradeLeg) error {
	if leg == nil || leg.SessionID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (
			session_id, wallet_id, token_id, side, price, size, trade_type, order_id, logged_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		leg.SessionID,
		leg.WalletID,
		leg.TokenID,
		string(leg.Side),
		leg.Price,
		leg.Size,
		leg.TradeType,
		leg.OrderID,
		leg.LoggedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trade leg: %w", err)
	}
	return nil
}

// GetBySession retrieves all legs for a session, ordered by logged_at ASC.
func (s *TradeStore) GetBySession(ctx context.Context, sessionID string) ([]*domain.TradeLeg, error) {
	query := `
		SELECT session_id, wallet_id, token_id, side, price, size, trade_type, order_id, logged_at
		FROM trades
		WHERE session_id = $1
		ORDER BY logged_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get trades by session: %w", err)
	}
	defer rows.Close()

	return scanTradeLegs(rows)
}

// GetByWallet retrieves all legs for a wallet, ordered by logged_at ASC.
func (s *TradeStore) GetByWallet(ctx context.Context, walletID int64) ([]*domain.TradeLeg, error) {
	query := `
		SELECT session_id, wallet_id, token_id, side, price, size, trade_type, order_id, logged_at
		FROM trades
		WHERE wallet_id = $1
		ORDER BY logged_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("get trades by wallet: %w", err)
	}
	defer rows.Close()

	return scanTradeLegs(rows)
}

// scanTradeLegs scans multiple rows into a slice of TradeLeg.
func scanTradeLegs(rows pgx.Rows) ([]*domain.TradeLeg, error) {
	var legs []*domain.TradeLeg

	for rows.Next() {
		var leg domain.TradeLeg
		var side string

		err := rows.Scan(
			&leg.SessionID,
			&leg.WalletID,
			&leg.TokenID,
			&side,
			&leg.Price,
			&leg.Size,
			&leg.TradeType,
			&leg.OrderID,
			&leg.LoggedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}

		leg.Side = domain.Side(side)
		legs = append(legs, &leg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return legs, nil
}
