package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// ChainStepStore implements storage.ChainStepStore using PostgreSQL.
type ChainStepStore struct {
	pool *Pool
}

// NewChainStepStore creates a new ChainStepStore.
func NewChainStepStore(pool *Pool) *ChainStepStore {
	return &ChainStepStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ChainStepStore = (*ChainStepStore)(nil)

const insertChainStepQuery = `
	INSERT INTO chain_steps (
		session_id, iteration, sequence_order, wallet_id, is_initial_buy, is_final_sell
	) VALUES ($1, $2, $3, $4, $5, $6)
`

// Insert appends one chain step.
func (s *ChainStepStore) Insert(ctx context.Context, step *domain.ChainStep) error {
	if step == nil || step.SessionID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertChainStepQuery,
		step.SessionID,
		step.Iteration,
		step.SequenceOrder,
		step.WalletID,
		step.IsInitialBuy,
		step.IsFinalSell,
	)
	if err != nil {
		return fmt.Errorf("insert chain step: %w", err)
	}
	return nil
}

// InsertBulk appends multiple steps in one transaction.
func (s *ChainStepStore) InsertBulk(ctx context.Context, steps []*domain.ChainStep) error {
	for _, step := range steps {
		if step == nil || step.SessionID == "" {
			return storage.ErrInvalidInput
		}
	}
	if len(steps) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin chain step tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, step := range steps {
		_, err := tx.Exec(ctx, insertChainStepQuery,
			step.SessionID,
			step.Iteration,
			step.SequenceOrder,
			step.WalletID,
			step.IsInitialBuy,
			step.IsFinalSell,
		)
		if err != nil {
			return fmt.Errorf("insert chain step in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit chain steps: %w", err)
	}
	return nil
}

// GetBySession retrieves all steps for a session, ordered by iteration ASC,
// sequence_order ASC.
func (s *ChainStepStore) GetBySession(ctx context.Context, sessionID string) ([]*domain.ChainStep, error) {
	query := `
		SELECT session_id, iteration, sequence_order, wallet_id, is_initial_buy, is_final_sell
		FROM chain_steps
		WHERE session_id = $1
		ORDER BY iteration ASC, sequence_order ASC
	`

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get chain steps by session: %w", err)
	}
	defer rows.Close()

	return scanChainSteps(rows)
}

// scanChainSteps scans multiple rows into a slice of ChainStep.
func scanChainSteps(rows pgx.Rows) ([]*domain.ChainStep, error) {
	var steps []*domain.ChainStep

	for rows.Next() {
		var step domain.ChainStep
		err := rows.Scan(
			&step.SessionID,
			&step.Iteration,
			&step.SequenceOrder,
			&step.WalletID,
			&step.IsInitialBuy,
			&step.IsFinalSell,
		)
		if err != nil {
			return nil, fmt.Errorf("scan chain step row: %w", err)
		}
		steps = append(steps, &step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chain step rows: %w", err)
	}

	return steps, nil
}
