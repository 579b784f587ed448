// Package orchestrator runs trading sessions: the single-market session flow
// around the sequencer, and the multi-market runner that fans sessions out
// across a bounded worker pool.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"crossfill/internal/domain"
	"crossfill/internal/observability"
	"crossfill/internal/sequencer"
	"crossfill/internal/storage"
)

// Venue is the subset of the venue client the session flow needs beyond
// what the sequencer already consumes.
type Venue interface {
	// ResolveToken finds the token ID of the target outcome in a market.
	ResolveToken(ctx context.Context, conditionID, outcome string) (string, error)

	// BestBidAsk returns the top of book; either side may be nil.
	BestBidAsk(ctx context.Context, tokenID string) (bid, ask *float64, err error)
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Venue     Venue
	Sequencer *sequencer.Sequencer
	Sessions  storage.SessionStore

	// Snapshots, when set, archives the NBBO observed at session start.
	// Best effort; archival failures never fail the session.
	Snapshots storage.BookSnapshotStore

	// TargetOutcome is the outcome label whose token the chain trades.
	// Defaults to "yes".
	TargetOutcome string

	// ChainLength is the number of wallets per chain. Defaults to 5.
	ChainLength int

	// Rand drives chain sampling. Defaults to a time-seeded source.
	Rand *rand.Rand
}

// Session runs one full chain-walk session on a market: resolve the target
// token, price the walk off the NBBO, create the session record, run the
// first chain and every sampled follow-up chain, dispose of the tail's
// holding, and write the terminal status exactly once.
type Session struct {
	venue     Venue
	seq       *sequencer.Sequencer
	sessions  storage.SessionStore
	snapshots storage.BookSnapshotStore
	outcome   string
	chainLen  int
	rng       *rand.Rand
}

// NewSession creates a Session from options.
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Venue == nil || opts.Sequencer == nil || opts.Sessions == nil {
		return nil, fmt.Errorf("session requires venue, sequencer and session store")
	}
	outcome := opts.TargetOutcome
	if outcome == "" {
		outcome = "yes"
	}
	chainLen := opts.ChainLength
	if chainLen <= 0 {
		chainLen = 5
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		venue:     opts.Venue,
		seq:       opts.Sequencer,
		sessions:  opts.Sessions,
		snapshots: opts.Snapshots,
		outcome:   outcome,
		chainLen:  chainLen,
		rng:       rng,
	}, nil
}

// SessionParams describes one session run.
type SessionParams struct {
	ConditionID string
	Wallets     []domain.Wallet
	Volume      float64
	// Iterations is the number of sampled chains after the first fixed one.
	Iterations int
}

// Run executes the session and returns its ID. The terminal status is
// written on both the success and the error path; an error here means the
// session is marked failed.
func (s *Session) Run(ctx context.Context, p SessionParams) (string, error) {
	if len(p.Wallets) < s.chainLen {
		return "", fmt.Errorf("need at least %d wallets for the first chain, have %d", s.chainLen, len(p.Wallets))
	}
	if p.Volume <= 0 {
		return "", fmt.Errorf("volume must be positive, got %v", p.Volume)
	}
	if p.Iterations < 0 {
		return "", fmt.Errorf("iterations must be non-negative, got %d", p.Iterations)
	}

	tokenID, err := s.venue.ResolveToken(ctx, p.ConditionID, s.outcome)
	if err != nil {
		return "", fmt.Errorf("resolve %q token: %w", s.outcome, err)
	}

	bid, ask, err := s.venue.BestBidAsk(ctx, tokenID)
	if err != nil {
		return "", fmt.Errorf("fetch NBBO: %w", err)
	}
	if bid == nil || ask == nil {
		return "", fmt.Errorf("token %s book is one-sided, cannot price the walk", tokenID)
	}

	sess := &domain.Session{
		SessionID:   uuid.NewString(),
		ConditionID: p.ConditionID,
		TokenID:     tokenID,
		Volume:      p.Volume,
		Iterations:  p.Iterations,
		WalletCount: len(p.Wallets),
		Status:      domain.SessionStatusRunning,
		StartTime:   time.Now().UnixMilli(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	s.archiveNBBO(ctx, sess.SessionID, tokenID, *bid, *ask)
	log.Printf("[session] %s started: market=%s token=%s volume=%.2f iterations=%d bid=%.4f ask=%.4f",
		sess.SessionID, p.ConditionID, tokenID, p.Volume, p.Iterations, *bid, *ask)

	start := time.Now()
	walkErr := s.walk(ctx, sess, p, *bid, *ask)

	status := domain.SessionStatusCompleted
	if walkErr != nil {
		status = domain.SessionStatusFailed
	}
	end := time.Now().UnixMilli()

	// The terminal status must land even when the walk died on a canceled
	// context.
	statusCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.sessions.UpdateStatus(statusCtx, sess.SessionID, status, &end); err != nil {
		log.Printf("[session] %s: writing terminal status %q failed: %v", sess.SessionID, status, err)
	}
	observability.RecordSessionRun(status, time.Since(start).Seconds())

	if walkErr != nil {
		return sess.SessionID, fmt.Errorf("session %s: %w", sess.SessionID, walkErr)
	}
	log.Printf("[session] %s completed", sess.SessionID)
	return sess.SessionID, nil
}

// walk runs the first fixed chain, every sampled follow-up chain, and the
// final disposal of the tail's holding.
func (s *Session) walk(ctx context.Context, sess *domain.Session, p SessionParams, bid, ask float64) error {
	acquirePrice := ask
	mid := (bid + ask) / 2

	chain, err := FirstChain(p.Wallets, s.chainLen)
	if err != nil {
		return err
	}

	if err := s.seq.ChainTrade(ctx, sequencer.ChainTradeParams{
		SessionID:      sess.SessionID,
		ConditionID:    sess.ConditionID,
		TokenID:        sess.TokenID,
		Chain:          chain,
		Target:         p.Volume,
		AcquirePrice:   acquirePrice,
		MidPrice:       mid,
		Iteration:      0,
		FinalIteration: p.Iterations == 0,
	}); err != nil {
		return err
	}

	tail := chain.Tail()
	for iter := 1; iter <= p.Iterations; iter++ {
		next, err := NextChain(p.Wallets, tail, s.chainLen, s.rng)
		if err != nil {
			return err
		}

		// The head carries the position handed over by the previous chain,
		// so acquisition is skipped; a misfill restart rebuilds it anyway.
		if err := s.seq.ChainTrade(ctx, sequencer.ChainTradeParams{
			SessionID:       sess.SessionID,
			ConditionID:     sess.ConditionID,
			TokenID:         sess.TokenID,
			Chain:           next,
			Target:          p.Volume,
			AcquirePrice:    acquirePrice,
			MidPrice:        mid,
			SkipAcquisition: true,
			Iteration:       iter,
			FinalIteration:  iter == p.Iterations,
		}); err != nil {
			return err
		}
		tail = next.Tail()
	}

	return s.seq.FinalSell(ctx, sess.SessionID, tail, sess.ConditionID, sess.TokenID)
}

func (s *Session) archiveNBBO(ctx context.Context, sessionID, tokenID string, bid, ask float64) {
	if s.snapshots == nil {
		return
	}
	snap := &domain.BookSnapshot{
		TokenID:    tokenID,
		SessionID:  sessionID,
		BestBid:    bid,
		BestAsk:    ask,
		Spread:     ask - bid,
		CapturedAt: time.Now().UnixMilli(),
	}
	if err := s.snapshots.InsertBulk(ctx, []*domain.BookSnapshot{snap}); err != nil {
		log.Printf("[session] %s: archiving NBBO failed: %v", sessionID, err)
	}
}
