// Package main scans the venue for cheap tight-spread markets and writes
// the ranking file the runner consumes. With --watch it keeps a WebSocket
// subscription on the selected tokens and archives every book update.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crossfill/internal/clob"
	"crossfill/internal/config"
	"crossfill/internal/discovery"
	"crossfill/internal/domain"
	"crossfill/internal/storage"
	chstore "crossfill/internal/storage/clickhouse"
)

const defaultWSEndpoint = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

func main() {
	settings := config.Load()

	topN := flag.Int("top", 30, "Number of markets to keep, cheapest first")
	output := flag.String("output", settings.CheapMarketsFile, "Output file for the ranking")
	watch := flag.Bool("watch", false, "Keep watching the selected tokens' books after the scan")
	wsEndpoint := flag.String("ws-endpoint", defaultWSEndpoint, "WebSocket market channel endpoint for --watch")
	clickhouseDSN := flag.String("clickhouse-dsn", settings.ClickHouseDSN, "ClickHouse connection string for book snapshot archival (optional)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, stopping scan...\n", sig)
		cancel()
	}()

	var snapshots storage.BookSnapshotStore
	if *clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to clickhouse: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		snapshots = chstore.NewBookSnapshotStore(conn)
	}

	client := clob.NewClient(settings.ClobHost, clob.WithTimeout(settings.HTTPTimeout))
	scanner := discovery.NewScanner(client, snapshots)

	markets, err := scanner.TopMarketsByPrice(ctx, *topN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}

	if err := discovery.WriteCheapMarkets(*output, markets); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}

	fmt.Printf("Found %d markets, written to %s\n", len(markets), *output)
	for _, m := range markets {
		fmt.Printf("  %s  price=%.4f  spread=%.4f  %s\n", m.ConditionID, m.Price, m.Spread, m.Question)
	}

	if !*watch || len(markets) == 0 {
		return
	}

	if err := watchBooks(ctx, *wsEndpoint, markets, snapshots); err != nil {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
		os.Exit(1)
	}
}

// watchBooks subscribes to every token of the selected markets and logs and
// archives each book update until the context ends.
func watchBooks(ctx context.Context, endpoint string, markets []domain.Market, snapshots storage.BookSnapshotStore) error {
	var tokens []string
	for _, m := range markets {
		for _, tok := range m.Tokens {
			tokens = append(tokens, tok.TokenID)
		}
	}
	if len(tokens) == 0 {
		return fmt.Errorf("selected markets carry no tokens to watch")
	}

	stream, err := clob.NewBookStream(ctx, endpoint, tokens, nil)
	if err != nil {
		return fmt.Errorf("open book stream: %w", err)
	}
	defer stream.Close()

	log.Printf("[scan] watching %d tokens across %d markets", len(tokens), len(markets))

	for {
		select {
		case <-ctx.Done():
			return nil
		case book, ok := <-stream.Updates():
			if !ok {
				return fmt.Errorf("book stream closed")
			}
			bid, ask := book.BestBid(), book.BestAsk()
			if bid == nil || ask == nil {
				continue
			}
			log.Printf("[scan] %s bid=%.4f ask=%.4f spread=%.4f", book.TokenID, *bid, *ask, *ask-*bid)

			if snapshots != nil {
				snap := &domain.BookSnapshot{
					TokenID:    book.TokenID,
					BestBid:    *bid,
					BestAsk:    *ask,
					Spread:     *ask - *bid,
					CapturedAt: time.Now().UnixMilli(),
				}
				if err := snapshots.InsertBulk(ctx, []*domain.BookSnapshot{snap}); err != nil {
					log.Printf("[scan] archiving snapshot for %s failed: %v", book.TokenID, err)
				}
			}
		}
	}
}
