// Package discovery finds cheap tight-spread markets to trade in. The scan
// walks every open market, inspects both outcome books and keeps markets
// whose widest outcome spread matches one of the allowed tick spreads.
package discovery

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

// AllowedSpreads are the spread values that mark a market as tight enough
// to cross-fill at the mid without bleeding edge.
var AllowedSpreads = []float64{0.002, 0.003, 0.004}

const spreadTolerance = 1e-9

// Venue is the subset of the venue client the scanner needs.
type Venue interface {
	ListMarkets(ctx context.Context) ([]domain.Market, error)
	FetchBook(ctx context.Context, tokenID string) (*domain.Book, error)
}

// Scanner ranks markets by price among those with an allowed spread.
type Scanner struct {
	venue Venue

	// snapshots, when set, archives every book top observed during the
	// scan. Best effort; archival failures never fail the scan.
	snapshots storage.BookSnapshotStore
}

// NewScanner creates a Scanner. snapshots may be nil.
func NewScanner(venue Venue, snapshots storage.BookSnapshotStore) *Scanner {
	return &Scanner{venue: venue, snapshots: snapshots}
}

// TopMarketsByPrice returns up to topN open markets whose widest outcome
// spread is allowed, cheapest first. Markets with an empty book side or a
// failing book fetch are skipped, not errors.
func (s *Scanner) TopMarketsByPrice(ctx context.Context, topN int) ([]domain.Market, error) {
	markets, err := s.venue.ListMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	var candidates []domain.Market
	var observed []*domain.BookSnapshot

	for _, m := range markets {
		if m.Closed || !m.Active {
			continue
		}

		spreads := make([]float64, 0, len(m.Tokens))
		asks := make([]float64, 0, len(m.Tokens))
		complete := len(m.Tokens) > 0

		for _, tok := range m.Tokens {
			book, err := s.venue.FetchBook(ctx, tok.TokenID)
			if err != nil {
				log.Printf("[discovery] skipping %s: book fetch failed: %v", m.ConditionID, err)
				complete = false
				break
			}

			bid, ask := book.BestBid(), book.BestAsk()
			if bid == nil || ask == nil {
				complete = false
				break
			}

			spreads = append(spreads, *ask-*bid)
			asks = append(asks, *ask)
			observed = append(observed, &domain.BookSnapshot{
				TokenID:    tok.TokenID,
				BestBid:    *bid,
				BestAsk:    *ask,
				Spread:     *ask - *bid,
				CapturedAt: time.Now().UnixMilli(),
			})
		}

		if !complete {
			continue
		}

		spread := spreads[0]
		for _, sp := range spreads[1:] {
			if sp > spread {
				spread = sp
			}
		}
		if !spreadAllowed(spread) {
			continue
		}

		m.Spread = spread
		m.Price = asks[0]
		for _, a := range asks[1:] {
			if a < m.Price {
				m.Price = a
			}
		}
		candidates = append(candidates, m)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Price < candidates[j].Price
	})
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}

	s.archive(ctx, observed)
	return candidates, nil
}

func spreadAllowed(spread float64) bool {
	for _, allowed := range AllowedSpreads {
		if math.Abs(spread-allowed) < spreadTolerance {
			return true
		}
	}
	return false
}

func (s *Scanner) archive(ctx context.Context, snaps []*domain.BookSnapshot) {
	if s.snapshots == nil || len(snaps) == 0 {
		return
	}
	if err := s.snapshots.InsertBulk(ctx, snaps); err != nil {
		log.Printf("[discovery] archiving %d book snapshots failed: %v", len(snaps), err)
	}
}

// WriteCheapMarkets writes the scan result file consumed by the runner.
func WriteCheapMarkets(path string, markets []domain.Market) error {
	var b strings.Builder
	for _, m := range markets {
		fmt.Fprintf(&b, "%s  |  %-70s  price=%.4f  spread=%.4f\n",
			m.ConditionID, m.Question, m.Price, m.Spread)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write cheap markets file: %w", err)
	}
	return nil
}

// ReadCheapMarkets parses condition IDs back out of a scan result file.
func ReadCheapMarkets(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cheap markets file: %w", err)
	}

	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, _, found := strings.Cut(line, "|")
		if !found {
			continue
		}
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
