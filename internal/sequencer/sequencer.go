package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"crossfill/internal/domain"
	"crossfill/internal/observability"
)

// ErrOperationStuck is returned when an operation keeps misfilling past the
// restart threshold. Operator intervention is required; auto-retrying
// further would only churn the books.
var ErrOperationStuck = errors.New("chain operation stuck")

// errRestart signals a misfill: the whole operation re-enters acquisition
// with the original target.
var errRestart = errors.New("misfill: restart operation")

// Options configures a Sequencer.
type Options struct {
	Oracle  Oracle
	Books   Books
	Traders TraderFactory
	// Recorder may be nil; audit logging is optional and never load-bearing.
	Recorder Recorder

	// SettleDelayMin/Max bound the debounce between submitting a hand-off
	// pair and re-reading positions. A debounce, not a correctness
	// mechanism; the recheck logic re-establishes correctness.
	SettleDelayMin time.Duration
	SettleDelayMax time.Duration

	// AcquireDelayMin/Max bound the debounce inside the acquisition loop.
	AcquireDelayMin time.Duration
	AcquireDelayMax time.Duration

	// RecheckDelay is the extra wait before re-reading an anomalous pair.
	RecheckDelay time.Duration

	// StuckRestartThreshold is the number of misfill restarts after which
	// the operation is abandoned with ErrOperationStuck.
	StuckRestartThreshold int
}

// Sequencer walks a chain of wallets, handing a fixed-size position from
// account to account. One Sequencer runs one chain walk at a time; parallel
// walks get their own instances.
type Sequencer struct {
	oracle   Oracle
	books    Books
	traders  TraderFactory
	recorder Recorder

	settleMin, settleMax   time.Duration
	acquireMin, acquireMax time.Duration
	recheckDelay           time.Duration
	stuckThreshold         int
}

// New creates a Sequencer from options.
func New(opts Options) (*Sequencer, error) {
	if opts.Oracle == nil || opts.Books == nil || opts.Traders == nil {
		return nil, fmt.Errorf("sequencer requires oracle, books and traders")
	}
	threshold := opts.StuckRestartThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &Sequencer{
		oracle:         opts.Oracle,
		books:          opts.Books,
		traders:        opts.Traders,
		recorder:       opts.Recorder,
		settleMin:      opts.SettleDelayMin,
		settleMax:      opts.SettleDelayMax,
		acquireMin:     opts.AcquireDelayMin,
		acquireMax:     opts.AcquireDelayMax,
		recheckDelay:   opts.RecheckDelay,
		stuckThreshold: threshold,
	}, nil
}

// ChainTradeParams describes one chain-trade operation.
type ChainTradeParams struct {
	SessionID   string
	ConditionID string
	TokenID     string
	Chain       domain.Chain
	// Target is the position size handed down the chain. Misfill restarts
	// always re-enter acquisition with this original value.
	Target       float64
	AcquirePrice float64
	MidPrice     float64
	// SkipAcquisition is set for chains after the first, whose head already
	// carries the position from the previous iteration.
	SkipAcquisition bool
	Iteration       int
	// FinalIteration marks the last chain of the session; the tail step is
	// flagged as the final disposal in the audit log.
	FinalIteration bool
}

// ChainTrade runs one full chain-trade operation: acquisition (unless
// skipped), then the pairwise hand-off walk. Misfills restart the whole
// operation from acquisition, bounded by the stuck threshold.
func (s *Sequencer) ChainTrade(ctx context.Context, p ChainTradeParams) error {
	if len(p.Chain) == 0 {
		return fmt.Errorf("empty chain")
	}
	if p.Target <= 0 {
		return fmt.Errorf("target size must be positive, got %v", p.Target)
	}

	s.recordSteps(p)

	restarts := 0
	for {
		// Restarts never skip acquisition: the head's position was consumed
		// by the misfilled leg and must be rebuilt.
		skip := p.SkipAcquisition && restarts == 0

		err := s.runOnce(ctx, p, skip)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errRestart) {
			return err
		}

		restarts++
		observability.RecordRestart()
		log.Printf("[sequencer] session=%s iter=%d misfill, restarting operation (%d/%d)",
			p.SessionID, p.Iteration, restarts, s.stuckThreshold)

		if restarts >= s.stuckThreshold {
			observability.RecordStuck()
			log.Printf("[sequencer] session=%s iter=%d stuck after %d restarts, operator intervention required",
				p.SessionID, p.Iteration, restarts)
			return fmt.Errorf("%w: %d misfill restarts (session=%s)", ErrOperationStuck, restarts, p.SessionID)
		}
	}
}

func (s *Sequencer) runOnce(ctx context.Context, p ChainTradeParams, skipAcquisition bool) error {
	if skipAcquisition {
		log.Printf("[sequencer] session=%s iter=%d head %s carries position, skipping acquisition",
			p.SessionID, p.Iteration, p.Chain.Head().Nickname)
	} else {
		if err := s.acquire(ctx, p); err != nil {
			return err
		}
	}

	for i := 0; i+1 < len(p.Chain); i++ {
		if err := s.handoff(ctx, p, p.Chain[i], p.Chain[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// acquire runs Phase A: buy at the acquisition price until the head account's
// settled position has grown by the target. Unbounded by design; the venue
// eventually fills a resting order at a price the caller controls.
func (s *Sequencer) acquire(ctx context.Context, p ChainTradeParams) error {
	head := p.Chain.Head()
	trader := s.traders(head)

	start, err := s.oracle.SettledPosition(ctx, head.Funder, p.ConditionID, p.TokenID)
	if err != nil {
		return fmt.Errorf("read head position: %w", err)
	}

	if start >= p.Target {
		log.Printf("[sequencer] session=%s head %s already holds %.2f >= target %.2f, no order needed",
			p.SessionID, head.Nickname, start, p.Target)
	} else {
		acquired := 0.0
		zeroRounds := 0
		for acquired < p.Target {
			remainder := p.Target - acquired
			orderID, err := trader.Submit(ctx, domain.OrderArgs{
				TokenID: p.TokenID,
				Side:    domain.SideBuy,
				Price:   p.AcquirePrice,
				Size:    remainder,
			})
			if err != nil {
				return fmt.Errorf("submit acquisition buy: %w", err)
			}

			if err := s.sleep(ctx, s.acquireMin, s.acquireMax); err != nil {
				return err
			}

			post, err := s.oracle.SettledPosition(ctx, head.Funder, p.ConditionID, p.TokenID)
			if err != nil {
				return fmt.Errorf("re-read head position: %w", err)
			}

			prev := acquired
			acquired = post - start
			log.Printf("[sequencer] session=%s acquisition round: acquired %.2f of %.2f",
				p.SessionID, acquired, p.Target)

			if acquired >= p.Target {
				break
			}
			if acquired <= prev {
				zeroRounds++
				if zeroRounds >= 3 {
					log.Printf("[sequencer] session=%s no acquisition progress for %d rounds, check book depth at %.3f",
						p.SessionID, zeroRounds, p.AcquirePrice)
				}
			} else {
				zeroRounds = 0
			}

			s.cancelQuiet(ctx, trader, orderID)
		}
	}

	s.recordLeg(domain.TradeLeg{
		SessionID: p.SessionID,
		WalletID:  head.ID,
		TokenID:   p.TokenID,
		Side:      domain.SideBuy,
		Price:     p.AcquirePrice,
		Size:      p.Target,
		TradeType: domain.TradeTypeInitialBuy,
		LoggedAt:  time.Now().UnixMilli(),
	})
	observability.RecordChainLeg("initial_buy")
	log.Printf("[sequencer] session=%s acquisition complete, head %s holds target %.2f",
		p.SessionID, head.Nickname, p.Target)
	return nil
}

// handoff runs one pair of Phase B: a simultaneous sell/buy at the mid price,
// verified against both accounts' settled deltas, retried until the full
// remaining size has moved.
func (s *Sequencer) handoff(ctx context.Context, p ChainTradeParams, seller, buyer domain.Wallet) error {
	sellerTrader := s.traders(seller)
	buyerTrader := s.traders(buyer)

	remaining := p.Target
	for remaining > 0 {
		preSeller, err := s.oracle.SettledPosition(ctx, seller.Funder, p.ConditionID, p.TokenID)
		if err != nil {
			return fmt.Errorf("read seller position: %w", err)
		}
		preBuyer, err := s.oracle.SettledPosition(ctx, buyer.Funder, p.ConditionID, p.TokenID)
		if err != nil {
			return fmt.Errorf("read buyer position: %w", err)
		}

		sellID, err := sellerTrader.Submit(ctx, domain.OrderArgs{
			TokenID: p.TokenID, Side: domain.SideSell, Price: p.MidPrice, Size: remaining,
		})
		if err != nil {
			return fmt.Errorf("submit hand-off sell: %w", err)
		}
		buyID, err := buyerTrader.Submit(ctx, domain.OrderArgs{
			TokenID: p.TokenID, Side: domain.SideBuy, Price: p.MidPrice, Size: remaining,
		})
		if err != nil {
			return fmt.Errorf("submit hand-off buy: %w", err)
		}

		if err := s.sleep(ctx, s.settleMin, s.settleMax); err != nil {
			return err
		}

		postSeller, err := s.oracle.SettledPosition(ctx, seller.Funder, p.ConditionID, p.TokenID)
		if err != nil {
			return fmt.Errorf("re-read seller position: %w", err)
		}
		postBuyer, err := s.oracle.SettledPosition(ctx, buyer.Funder, p.ConditionID, p.TokenID)
		if err != nil {
			return fmt.Errorf("re-read buyer position: %w", err)
		}

		sold := preSeller - postSeller
		bought := postBuyer - preBuyer
		outcome := Classify(sold, bought, remaining)
		observability.RecordMatchOutcome(string(outcome))

		if outcome == OutcomeAnomaly {
			// Settlement may simply be lagging; give it one more window
			// before acting on the anomaly.
			log.Printf("[sequencer] session=%s %s->%s anomaly (sold=%.2f bought=%.2f remaining=%.2f), rechecking",
				p.SessionID, seller.Nickname, buyer.Nickname, sold, bought, remaining)
			if err := s.sleep(ctx, s.recheckDelay, s.recheckDelay); err != nil {
				return err
			}

			postSeller, err = s.oracle.SettledPosition(ctx, seller.Funder, p.ConditionID, p.TokenID)
			if err != nil {
				return fmt.Errorf("recheck seller position: %w", err)
			}
			postBuyer, err = s.oracle.SettledPosition(ctx, buyer.Funder, p.ConditionID, p.TokenID)
			if err != nil {
				return fmt.Errorf("recheck buyer position: %w", err)
			}
			sold = preSeller - postSeller
			bought = postBuyer - preBuyer

			if Classify(sold, bought, remaining) != OutcomeFullMatch {
				class := ClassifyAnomaly(sold, bought, remaining)
				observability.RecordAnomaly(string(class))

				switch class {
				case AnomalyDivert:
					log.Printf("[sequencer] session=%s buyer %s filled elsewhere, diverting seller %s residual %.2f",
						p.SessionID, buyer.Nickname, seller.Nickname, postSeller)
					s.divert(ctx, p, seller, sellerTrader, postSeller)
					remaining = 0
					continue

				case AnomalyMisfill:
					log.Printf("[sequencer] session=%s seller %s inventory left but buyer %s got nothing",
						p.SessionID, seller.Nickname, buyer.Nickname)
					s.cancelQuiet(ctx, buyerTrader, buyID)
					return errRestart

				default:
					s.cancelQuiet(ctx, sellerTrader, sellID)
					s.cancelQuiet(ctx, buyerTrader, buyID)
					continue
				}
			}

			log.Printf("[sequencer] session=%s recheck resolved %s->%s to full match",
				p.SessionID, seller.Nickname, buyer.Nickname)
			outcome = OutcomeFullMatch
		}

		switch outcome {
		case OutcomeFullMatch:
			now := time.Now().UnixMilli()
			s.recordLeg(domain.TradeLeg{
				SessionID: p.SessionID, WalletID: seller.ID, TokenID: p.TokenID,
				Side: domain.SideSell, Price: p.MidPrice, Size: remaining,
				TradeType: domain.TradeTypeChainMatch, OrderID: sellID, LoggedAt: now,
			})
			s.recordLeg(domain.TradeLeg{
				SessionID: p.SessionID, WalletID: buyer.ID, TokenID: p.TokenID,
				Side: domain.SideBuy, Price: p.MidPrice, Size: remaining,
				TradeType: domain.TradeTypeChainMatch, OrderID: buyID, LoggedAt: now,
			})
			observability.RecordChainLeg("chain_match")
			log.Printf("[sequencer] session=%s matched %s->%s size %.2f at %.3f",
				p.SessionID, seller.Nickname, buyer.Nickname, remaining, p.MidPrice)
			remaining = 0

		case OutcomePartialFill:
			log.Printf("[sequencer] session=%s partial fill %s->%s: sold %.2f of %.2f, retrying remainder",
				p.SessionID, seller.Nickname, buyer.Nickname, sold, remaining)
			s.cancelQuiet(ctx, sellerTrader, sellID)
			s.cancelQuiet(ctx, buyerTrader, buyID)
			remaining -= sold
		}
	}

	return nil
}

// divert liquidates the seller's residual at the current best bid. Fire and
// forget: the chain advances whether or not this order confirms, so every
// failure here is logged and swallowed.
func (s *Sequencer) divert(ctx context.Context, p ChainTradeParams, seller domain.Wallet, trader Trader, residual float64) {
	if residual <= 0 {
		return
	}

	bid, _, err := s.books.BestBidAsk(ctx, p.TokenID)
	if err != nil {
		log.Printf("[sequencer] divert: book read failed for %s: %v", seller.Nickname, err)
		return
	}
	if bid == nil {
		log.Printf("[sequencer] divert: no bids for token %s, residual %.2f stays with %s",
			p.TokenID, residual, seller.Nickname)
		return
	}

	orderID, err := trader.Submit(ctx, domain.OrderArgs{
		TokenID: p.TokenID, Side: domain.SideSell, Price: *bid, Size: residual,
	})
	if err != nil {
		log.Printf("[sequencer] divert sell failed for %s: %v", seller.Nickname, err)
		return
	}

	s.recordLeg(domain.TradeLeg{
		SessionID: p.SessionID, WalletID: seller.ID, TokenID: p.TokenID,
		Side: domain.SideSell, Price: *bid, Size: residual,
		TradeType: domain.TradeTypeDivertSell, OrderID: orderID, LoggedAt: time.Now().UnixMilli(),
	})
	observability.RecordChainLeg("divert_sell")
}

// FinalSell disposes of the tail account's full holding at the best bid.
// Run by the session after the last chain walk, outside the pairwise loop.
func (s *Sequencer) FinalSell(ctx context.Context, sessionID string, tail domain.Wallet, conditionID, tokenID string) error {
	pos, err := s.oracle.SettledPosition(ctx, tail.Funder, conditionID, tokenID)
	if err != nil {
		return fmt.Errorf("read tail position: %w", err)
	}
	if pos <= 0 {
		log.Printf("[sequencer] session=%s tail %s holds nothing, no final sell", sessionID, tail.Nickname)
		return nil
	}

	bid, _, err := s.books.BestBidAsk(ctx, tokenID)
	if err != nil {
		return fmt.Errorf("read book for final sell: %w", err)
	}
	if bid == nil {
		return fmt.Errorf("no bids for token %s, cannot dispose %.2f", tokenID, pos)
	}

	orderID, err := s.traders(tail).Submit(ctx, domain.OrderArgs{
		TokenID: tokenID, Side: domain.SideSell, Price: *bid, Size: pos,
	})
	if err != nil {
		return fmt.Errorf("submit final sell: %w", err)
	}

	s.recordLeg(domain.TradeLeg{
		SessionID: sessionID, WalletID: tail.ID, TokenID: tokenID,
		Side: domain.SideSell, Price: *bid, Size: pos,
		TradeType: domain.TradeTypeFinalSell, OrderID: orderID, LoggedAt: time.Now().UnixMilli(),
	})
	observability.RecordChainLeg("final_sell")
	log.Printf("[sequencer] session=%s final sell: %s disposed %.2f at %.3f",
		sessionID, tail.Nickname, pos, *bid)
	return nil
}

// cancelQuiet cancels best-effort. An already-filled or already-gone order
// is a normal outcome.
func (s *Sequencer) cancelQuiet(ctx context.Context, trader Trader, orderID string) {
	if orderID == "" {
		return
	}
	if err := trader.Cancel(ctx, orderID); err != nil {
		log.Printf("[sequencer] cancel %s failed: %v", orderID, err)
	}
}

func (s *Sequencer) recordLeg(leg domain.TradeLeg) {
	if s.recorder != nil {
		s.recorder.RecordLeg(leg)
	}
}

func (s *Sequencer) recordSteps(p ChainTradeParams) {
	if s.recorder == nil {
		return
	}
	steps := make([]domain.ChainStep, 0, len(p.Chain))
	for i, w := range p.Chain {
		steps = append(steps, domain.ChainStep{
			SessionID:     p.SessionID,
			Iteration:     p.Iteration,
			SequenceOrder: i,
			WalletID:      w.ID,
			IsInitialBuy:  i == 0 && !p.SkipAcquisition,
			IsFinalSell:   i == len(p.Chain)-1 && p.FinalIteration,
		})
	}
	s.recorder.RecordSteps(steps)
}

// sleep waits a random duration in [min, max], or returns early when the
// context ends. Zero bounds skip the wait entirely.
func (s *Sequencer) sleep(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
