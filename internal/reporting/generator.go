package reporting

import (
	"context"
	"fmt"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// Generator builds report views from the persistence stores.
type Generator struct {
	sessions storage.SessionStore
	trades   storage.TradeStore
	steps    storage.ChainStepStore
	wallets  storage.WalletStore
}

// NewGenerator creates a Generator over the given stores.
func NewGenerator(sessions storage.SessionStore, trades storage.TradeStore, steps storage.ChainStepStore, wallets storage.WalletStore) *Generator {
	return &Generator{
		sessions: sessions,
		trades:   trades,
		steps:    steps,
		wallets:  wallets,
	}
}

// RecentSessions returns the most recently started sessions with their
// trade counts, newest first.
func (g *Generator) RecentSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	sessions, err := g.sessions.GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent sessions: %w", err)
	}

	rows := make([]SessionRow, 0, len(sessions))
	for _, s := range sessions {
		legs, err := g.trades.GetBySession(ctx, s.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load trades for %s: %w", s.SessionID, err)
		}
		rows = append(rows, sessionRow(s, len(legs)))
	}
	return rows, nil
}

// SessionDetail returns one session with its trades and planned chain
// steps, both joined with wallet names.
func (g *Generator) SessionDetail(ctx context.Context, sessionID string) (*SessionDetail, error) {
	sess, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	names, err := g.walletNames(ctx)
	if err != nil {
		return nil, err
	}

	legs, err := g.trades.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load trades for %s: %w", sessionID, err)
	}
	steps, err := g.steps.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load chain steps for %s: %w", sessionID, err)
	}

	detail := &SessionDetail{Session: sessionRow(sess, len(legs))}

	var weighted float64
	for _, leg := range legs {
		w := names[leg.WalletID]
		detail.Trades = append(detail.Trades, TradeRow{
			Nickname:    w.Nickname,
			WalletIndex: w.Index,
			Side:        string(leg.Side),
			Price:       leg.Price,
			Size:        leg.Size,
			TradeType:   leg.TradeType,
			OrderID:     leg.OrderID,
			LoggedAt:    leg.LoggedAt,
		})
		detail.FilledVolume += leg.Size
		weighted += leg.Price * leg.Size
	}
	if detail.FilledVolume > 0 {
		detail.AvgPrice = weighted / detail.FilledVolume
	}

	for _, step := range steps {
		detail.Steps = append(detail.Steps, StepRow{
			Iteration:     step.Iteration,
			SequenceOrder: step.SequenceOrder,
			Nickname:      names[step.WalletID].Nickname,
			IsInitialBuy:  step.IsInitialBuy,
			IsFinalSell:   step.IsFinalSell,
		})
	}

	return detail, nil
}

// WalletActivity returns per-wallet trade totals, roster order.
func (g *Generator) WalletActivity(ctx context.Context) ([]WalletRow, error) {
	wallets, err := g.wallets.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}

	rows := make([]WalletRow, 0, len(wallets))
	for _, w := range wallets {
		legs, err := g.trades.GetByWallet(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("load trades for wallet %d: %w", w.ID, err)
		}

		row := WalletRow{
			Nickname:    w.Nickname,
			WalletIndex: w.Index,
			Funder:      w.Funder,
			Active:      w.Active,
			TradeCount:  len(legs),
		}
		for _, leg := range legs {
			row.Volume += leg.Size
			if leg.LoggedAt > row.LastTradeAt {
				row.LastTradeAt = leg.LoggedAt
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// walletNames maps wallet IDs to their roster entries. Legs referencing an
// unknown wallet render with a zero-value wallet rather than failing the
// report.
func (g *Generator) walletNames(ctx context.Context) (map[int64]domain.Wallet, error) {
	wallets, err := g.wallets.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("load wallets: %w", err)
	}
	names := make(map[int64]domain.Wallet, len(wallets))
	for _, w := range wallets {
		names[w.ID] = *w
	}
	return names, nil
}

func sessionRow(s *domain.Session, tradeCount int) SessionRow {
	return SessionRow{
		SessionID:   s.SessionID,
		ConditionID: s.ConditionID,
		TokenID:     s.TokenID,
		Status:      s.Status,
		Volume:      s.Volume,
		Iterations:  s.Iterations,
		WalletCount: s.WalletCount,
		TradeCount:  tradeCount,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
	}
}
