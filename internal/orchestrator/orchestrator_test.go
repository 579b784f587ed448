package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/discovery"
	"crossfill/internal/domain"
)

// fakeChecker reports markets as tradable when listed in active.
type fakeChecker struct {
	active map[string]bool
	broken map[string]bool
}

func (c *fakeChecker) GetMarket(_ context.Context, conditionID string) (*domain.Market, error) {
	if c.broken[conditionID] {
		return nil, errors.New("lookup failed")
	}
	return &domain.Market{
		ConditionID:     conditionID,
		Active:          c.active[conditionID],
		Closed:          !c.active[conditionID],
		AcceptingOrders: c.active[conditionID],
	}, nil
}

// fakeScanner returns a fixed scan result and counts invocations.
type fakeScanner struct {
	markets []domain.Market
	calls   int
}

func (s *fakeScanner) TopMarketsByPrice(context.Context, int) ([]domain.Market, error) {
	s.calls++
	return s.markets, nil
}

// callRecorder records RunMarket invocations and fails the listed markets.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (r *callRecorder) run(_ context.Context, conditionID string) error {
	r.mu.Lock()
	r.calls = append(r.calls, conditionID)
	r.mu.Unlock()
	if r.fail[conditionID] {
		return errors.New("walk blew up")
	}
	return nil
}

func writeMarketsFile(t *testing.T, ids ...string) string {
	t.Helper()
	markets := make([]domain.Market, len(ids))
	for i, id := range ids {
		markets[i] = domain.Market{ConditionID: id, Question: fmt.Sprintf("market %s?", id)}
	}
	path := filepath.Join(t.TempDir(), "cheap_markets.txt")
	require.NoError(t, discovery.WriteCheapMarkets(path, markets))
	return path
}

func TestRunnerRunsActiveMarkets(t *testing.T) {
	path := writeMarketsFile(t, "m1", "m2", "m3")
	checker := &fakeChecker{active: map[string]bool{"m1": true, "m2": true, "m3": true}}
	scanner := &fakeScanner{}
	rec := &callRecorder{}

	r, err := NewRunner(RunnerOptions{
		Checker:          checker,
		Scanner:          scanner,
		RunMarket:        rec.run,
		CheapMarketsFile: path,
		MinActiveMarkets: 2,
		MaxWorkers:       2,
	})
	require.NoError(t, err)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Launched)
	assert.ElementsMatch(t, []string{"m1", "m2", "m3"}, result.Completed)
	assert.Empty(t, result.Failed)
	assert.Zero(t, scanner.calls, "no regeneration when enough markets are active")
	assert.ElementsMatch(t, []string{"m1", "m2", "m3"}, rec.calls)
}

func TestRunnerRegeneratesWhenShort(t *testing.T) {
	path := writeMarketsFile(t, "m1", "dead")
	checker := &fakeChecker{active: map[string]bool{"m1": true, "m4": true, "m5": true}}
	scanner := &fakeScanner{markets: []domain.Market{
		{ConditionID: "m4", Question: "fresh?"},
		{ConditionID: "m5", Question: "fresher?"},
	}}
	rec := &callRecorder{}

	r, err := NewRunner(RunnerOptions{
		Checker:          checker,
		Scanner:          scanner,
		RunMarket:        rec.run,
		CheapMarketsFile: path,
		MinActiveMarkets: 2,
	})
	require.NoError(t, err)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, scanner.calls)
	assert.ElementsMatch(t, []string{"m4", "m5"}, result.Completed)

	// The file was rewritten with the fresh scan.
	ids, err := discovery.ReadCheapMarkets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"m4", "m5"}, ids)
}

func TestRunnerProceedsAfterRegenBudget(t *testing.T) {
	path := writeMarketsFile(t, "m1")
	checker := &fakeChecker{active: map[string]bool{"m1": true}}
	scanner := &fakeScanner{markets: []domain.Market{{ConditionID: "m1"}}}
	rec := &callRecorder{}

	r, err := NewRunner(RunnerOptions{
		Checker:          checker,
		Scanner:          scanner,
		RunMarket:        rec.run,
		CheapMarketsFile: path,
		MinActiveMarkets: 5,
		MaxRegenerations: 2,
	})
	require.NoError(t, err)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, scanner.calls, "regeneration bounded by the budget")
	assert.Equal(t, []string{"m1"}, result.Completed, "runs with what is active once the budget is spent")
}

func TestRunnerIsolatesSessionFailures(t *testing.T) {
	path := writeMarketsFile(t, "m1", "m2", "m3")
	checker := &fakeChecker{active: map[string]bool{"m1": true, "m2": true, "m3": true}}
	rec := &callRecorder{fail: map[string]bool{"m2": true}}

	r, err := NewRunner(RunnerOptions{
		Checker:          checker,
		Scanner:          &fakeScanner{},
		RunMarket:        rec.run,
		CheapMarketsFile: path,
		MinActiveMarkets: 1,
	})
	require.NoError(t, err)

	result, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"m1", "m3"}, result.Completed)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0], "m2")
}

func TestRunnerSkipsUnverifiableMarkets(t *testing.T) {
	path := writeMarketsFile(t, "m1", "m2")
	checker := &fakeChecker{
		active: map[string]bool{"m1": true, "m2": true},
		broken: map[string]bool{"m2": true},
	}
	rec := &callRecorder{}

	r, err := NewRunner(RunnerOptions{
		Checker:          checker,
		Scanner:          &fakeScanner{},
		RunMarket:        rec.run,
		CheapMarketsFile: path,
		MinActiveMarkets: 1,
	})
	require.NoError(t, err)

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, result.Completed)
}
