// Package main chain-trades one market across N wallets from a CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crossfill/internal/clob"
	"crossfill/internal/config"
	"crossfill/internal/domain"
	"crossfill/internal/orchestrator"
	"crossfill/internal/recorder"
	"crossfill/internal/sequencer"
	"crossfill/internal/storage"
	chstore "crossfill/internal/storage/clickhouse"
	"crossfill/internal/storage/memory"
	pgstore "crossfill/internal/storage/postgres"
	"crossfill/internal/wallets"
)

func main() {
	settings := config.Load()

	walletsCSV := flag.String("wallets", settings.WalletsCSV, "Path to CSV file of wallets (signing_key,funder)")
	condition := flag.String("condition", "", "Venue condition_id (required)")
	volume := flag.Float64("volume", 5, "Trade size per order")
	iterations := flag.Int("iterations", 1, "Number of sampled chains after the first fixed one")
	postgresDSN := flag.String("postgres-dsn", settings.PostgresDSN, "PostgreSQL connection string; empty runs with in-memory stores")
	clickhouseDSN := flag.String("clickhouse-dsn", settings.ClickHouseDSN, "ClickHouse connection string for book snapshot archival (optional)")
	flag.Parse()

	if *condition == "" {
		fmt.Fprintln(os.Stderr, "Error: --condition is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling session...\n", sig)
		cancel()
	}()

	stores, cleanup, err := buildStores(ctx, *postgresDSN, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening stores: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	client := clob.NewClient(settings.ClobHost, clob.WithTimeout(settings.HTTPTimeout))

	rec := recorder.New(recorder.Options{Trades: stores.trades, Steps: stores.steps})
	defer rec.Close()

	seq, err := sequencer.New(sequencer.Options{
		Oracle: client,
		Books:  client,
		Traders: func(w domain.Wallet) sequencer.Trader {
			return client.NewTrader(clob.NewSigner(w.SigningKey), w.Funder)
		},
		Recorder:              rec,
		SettleDelayMin:        settings.SettleDelayMin,
		SettleDelayMax:        settings.SettleDelayMax,
		AcquireDelayMin:       settings.AcquireDelayMin,
		AcquireDelayMax:       settings.AcquireDelayMax,
		RecheckDelay:          settings.RecheckDelay,
		StuckRestartThreshold: settings.StuckRestartThreshold,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating sequencer: %v\n", err)
		os.Exit(1)
	}

	roster, err := wallets.Load(ctx, *walletsCSV, stores.wallets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading wallets: %v\n", err)
		os.Exit(1)
	}

	session, err := orchestrator.NewSession(orchestrator.SessionOptions{
		Venue:         client,
		Sequencer:     seq,
		Sessions:      stores.sessions,
		Snapshots:     stores.snapshots,
		TargetOutcome: settings.TargetOutcome,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session: %v\n", err)
		os.Exit(1)
	}

	id, err := session.Run(ctx, orchestrator.SessionParams{
		ConditionID: *condition,
		Wallets:     roster,
		Volume:      *volume,
		Iterations:  *iterations,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Session %s completed\n", id)
}

// cmdStores bundles the stores the session flow needs.
type cmdStores struct {
	wallets   storage.WalletStore
	sessions  storage.SessionStore
	trades    storage.TradeStore
	steps     storage.ChainStepStore
	snapshots storage.BookSnapshotStore
}

// buildStores opens postgres-backed stores when a DSN is given and falls
// back to in-memory ones otherwise. Snapshot archival needs ClickHouse and
// is skipped without it.
func buildStores(ctx context.Context, postgresDSN, clickhouseDSN string) (*cmdStores, func(), error) {
	cleanup := func() {}
	stores := &cmdStores{}

	if postgresDSN == "" {
		fmt.Println("Warning: no --postgres-dsn, audit records will not survive the process")
		stores.wallets = memory.NewWalletStore()
		stores.sessions = memory.NewSessionStore()
		stores.trades = memory.NewTradeStore()
		stores.steps = memory.NewChainStepStore()
	} else {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		cleanup = pool.Close
		stores.wallets = pgstore.NewWalletStore(pool)
		stores.sessions = pgstore.NewSessionStore(pool)
		stores.trades = pgstore.NewTradeStore(pool)
		stores.steps = pgstore.NewChainStepStore(pool)
	}

	if clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		pgCleanup := cleanup
		cleanup = func() {
			conn.Close()
			pgCleanup()
		}
		stores.snapshots = chstore.NewBookSnapshotStore(conn)
	}

	return stores, cleanup, nil
}
