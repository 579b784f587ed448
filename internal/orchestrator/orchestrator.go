package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"crossfill/internal/discovery"
	"crossfill/internal/domain"
	"crossfill/internal/observability"
)

// MarketChecker verifies that a market is still open for trading.
type MarketChecker interface {
	GetMarket(ctx context.Context, conditionID string) (*domain.Market, error)
}

// MarketScanner regenerates the cheap-markets ranking.
type MarketScanner interface {
	TopMarketsByPrice(ctx context.Context, topN int) ([]domain.Market, error)
}

// RunMarketFunc runs one full session for a market. Each invocation must
// build its own venue clients and store connections; workers share nothing.
type RunMarketFunc func(ctx context.Context, conditionID string) error

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Checker   MarketChecker
	Scanner   MarketScanner
	RunMarket RunMarketFunc

	// CheapMarketsFile is the scan result file listing candidate markets.
	CheapMarketsFile string

	// MinActiveMarkets is the active count below which the file is
	// regenerated. Defaults to 20.
	MinActiveMarkets int

	// ScanTopN is how many markets a regeneration keeps. Defaults to 30.
	ScanTopN int

	// MaxRegenerations bounds scan reruns per Run call. Defaults to 1.
	MaxRegenerations int

	// MaxWorkers bounds concurrent sessions. Defaults to 10.
	MaxWorkers int
}

// Runner launches one session per active market on a bounded worker pool.
// A failing session is reported in the result, never fatal to its siblings.
type Runner struct {
	checker   MarketChecker
	scanner   MarketScanner
	runMarket RunMarketFunc

	file       string
	minActive  int
	scanTopN   int
	maxRegens  int
	maxWorkers int
}

// NewRunner creates a Runner from options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Checker == nil || opts.Scanner == nil || opts.RunMarket == nil {
		return nil, fmt.Errorf("runner requires checker, scanner and run-market func")
	}
	if opts.CheapMarketsFile == "" {
		return nil, fmt.Errorf("runner requires a cheap markets file path")
	}
	r := &Runner{
		checker:    opts.Checker,
		scanner:    opts.Scanner,
		runMarket:  opts.RunMarket,
		file:       opts.CheapMarketsFile,
		minActive:  opts.MinActiveMarkets,
		scanTopN:   opts.ScanTopN,
		maxRegens:  opts.MaxRegenerations,
		maxWorkers: opts.MaxWorkers,
	}
	if r.minActive <= 0 {
		r.minActive = 20
	}
	if r.scanTopN <= 0 {
		r.scanTopN = 30
	}
	if r.maxRegens < 0 {
		r.maxRegens = 0
	} else if r.maxRegens == 0 {
		r.maxRegens = 1
	}
	if r.maxWorkers <= 0 {
		r.maxWorkers = 10
	}
	return r, nil
}

// RunResult summarizes one Run call.
type RunResult struct {
	Launched  int
	Completed []string
	// Failed holds "conditionID: error" entries for sessions that errored.
	Failed []string
}

// Run verifies the market file, regenerates it while the active set is
// short, then runs a session per active market in parallel.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	active, err := r.activeMarkets(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		log.Printf("[runner] no active markets after regeneration, nothing to do")
		return &RunResult{}, nil
	}

	workers := r.maxWorkers
	if workers > len(active) {
		workers = len(active)
	}
	log.Printf("[runner] launching sessions for %d markets on %d workers", len(active), workers)

	result := &RunResult{Launched: len(active)}
	sem := make(chan struct{}, workers)
	var mu sync.Mutex
	var wg sync.WaitGroup
	var running int64

	for _, conditionID := range active {
		wg.Add(1)
		go func(conditionID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			observability.UpdateActiveSessions(int(atomic.AddInt64(&running, 1)))
			err := r.runMarket(ctx, conditionID)
			observability.UpdateActiveSessions(int(atomic.AddInt64(&running, -1)))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[runner] session for %s failed: %v", conditionID, err)
				result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", conditionID, err))
				return
			}
			log.Printf("[runner] session for %s completed", conditionID)
			result.Completed = append(result.Completed, conditionID)
		}(conditionID)
	}
	wg.Wait()

	return result, nil
}

// activeMarkets reads the market file and keeps the markets the venue still
// reports as tradable, regenerating the file while the set is short. After
// the regeneration budget is spent the runner proceeds with whatever is
// active.
func (r *Runner) activeMarkets(ctx context.Context) ([]string, error) {
	for attempt := 0; ; attempt++ {
		ids, err := discovery.ReadCheapMarkets(r.file)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		var active []string
		for _, id := range ids {
			if r.tradable(ctx, id) {
				active = append(active, id)
			}
		}

		if len(active) >= r.minActive || attempt >= r.maxRegens {
			return active, nil
		}

		log.Printf("[runner] only %d of %d markets active, regenerating %s (%d/%d)",
			len(active), len(ids), r.file, attempt+1, r.maxRegens)
		markets, err := r.scanner.TopMarketsByPrice(ctx, r.scanTopN)
		if err != nil {
			return nil, fmt.Errorf("regenerate market scan: %w", err)
		}
		if err := discovery.WriteCheapMarkets(r.file, markets); err != nil {
			return nil, err
		}
	}
}

// tradable treats a verification failure as inactive, not fatal; a flaky
// lookup should cost one market, not the whole run.
func (r *Runner) tradable(ctx context.Context, conditionID string) bool {
	m, err := r.checker.GetMarket(ctx, conditionID)
	if err != nil {
		log.Printf("[runner] could not verify market %s: %v", conditionID, err)
		return false
	}
	return m.Tradable()
}
