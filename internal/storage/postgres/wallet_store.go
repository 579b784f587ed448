package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL. Signing keys
// are never written; only the funding address and metadata persist.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// Add registers a wallet. Returns ErrDuplicateKey if the index is taken.
func (s *WalletStore) Add(ctx context.Context, w *domain.Wallet) (int64, error) {
	if w == nil || w.Funder == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallets (wallet_index, nickname, funder, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query, w.Index, w.Nickname, w.Funder, w.Active).Scan(&id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return 0, storage.ErrDuplicateKey
		}
		return 0, fmt.Errorf("insert wallet: %w", err)
	}
	return id, nil
}

// GetByIndex retrieves a wallet by index. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByIndex(ctx context.Context, index int) (*domain.Wallet, error) {
	query := `
		SELECT id, wallet_index, nickname, funder, active
		FROM wallets
		WHERE wallet_index = $1
	`

	row := s.pool.QueryRow(ctx, query, index)
	w, err := scanWallet(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet by index: %w", err)
	}
	return w, nil
}

// List retrieves wallets ordered by index.
func (s *WalletStore) List(ctx context.Context, activeOnly bool) ([]*domain.Wallet, error) {
	query := `
		SELECT id, wallet_index, nickname, funder, active
		FROM wallets
		WHERE ($1 = false OR active = true)
		ORDER BY wallet_index ASC
	`

	rows, err := s.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}

// Deactivate marks a wallet inactive. Returns ErrNotFound if no such ID.
func (s *WalletStore) Deactivate(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE wallets SET active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanWallet scans a single row into a Wallet.
func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.ID, &w.Index, &w.Nickname, &w.Funder, &w.Active)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
