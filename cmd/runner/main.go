// Package main runs chain-trade sessions for every active cheap market in
// parallel. Each worker owns its own venue clients and store connections.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"crossfill/internal/clob"
	"crossfill/internal/config"
	"crossfill/internal/discovery"
	"crossfill/internal/domain"
	"crossfill/internal/observability"
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
	marketsFile := flag.String("markets", settings.CheapMarketsFile, "Cheap markets file; regenerated when too few are active")
	volume := flag.Float64("volume", 5, "Trade size per order")
	iterations := flag.Int("iterations", 2, "Sampled chains per market after the first fixed one")
	minActive := flag.Int("min-active", settings.MinActiveMarkets, "Minimum active markets required before launching")
	maxRetries := flag.Int("max-retries", 1, "Market file regeneration attempts")
	scanTopN := flag.Int("scan-top", 30, "Markets kept per regeneration")
	maxWorkers := flag.Int("max-workers", settings.MaxWorkers, "Maximum concurrent sessions")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus /metrics listen address; empty disables")
	postgresDSN := flag.String("postgres-dsn", settings.PostgresDSN, "PostgreSQL connection string; empty runs with in-memory stores")
	clickhouseDSN := flag.String("clickhouse-dsn", settings.ClickHouseDSN, "ClickHouse connection string for book snapshot archival (optional)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling sessions...\n", sig)
		cancel()
	}()

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	// The checker and scanner run serially before any session launches, so
	// they can share one client.
	client := clob.NewClient(settings.ClobHost, clob.WithTimeout(settings.HTTPTimeout))
	scanner := discovery.NewScanner(client, nil)

	runMarket := func(ctx context.Context, conditionID string) error {
		return runSession(ctx, settings, sessionParams{
			conditionID:   conditionID,
			walletsCSV:    *walletsCSV,
			volume:        *volume,
			iterations:    *iterations,
			postgresDSN:   *postgresDSN,
			clickhouseDSN: *clickhouseDSN,
		})
	}

	runner, err := orchestrator.NewRunner(orchestrator.RunnerOptions{
		Checker:          client,
		Scanner:          scanner,
		RunMarket:        runMarket,
		CheapMarketsFile: *marketsFile,
		MinActiveMarkets: *minActive,
		ScanTopN:         *scanTopN,
		MaxRegenerations: *maxRetries,
		MaxWorkers:       *maxWorkers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating runner: %v\n", err)
		os.Exit(1)
	}

	result, err := runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Runner error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Runner finished: %d launched, %d completed, %d failed\n",
		result.Launched, len(result.Completed), len(result.Failed))
	for _, f := range result.Failed {
		fmt.Printf("  failed: %s\n", f)
	}
	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}

// sessionParams carries one worker's session arguments.
type sessionParams struct {
	conditionID   string
	walletsCSV    string
	volume        float64
	iterations    int
	postgresDSN   string
	clickhouseDSN string
}

// runSession builds a fully isolated stack for one market: its own venue
// client, store connections, recorder and sequencer. Workers share nothing
// mutable.
func runSession(ctx context.Context, settings config.Settings, p sessionParams) error {
	var (
		walletStore   storage.WalletStore
		sessionStore  storage.SessionStore
		tradeStore    storage.TradeStore
		stepStore     storage.ChainStepStore
		snapshotStore storage.BookSnapshotStore
	)

	if p.postgresDSN == "" {
		walletStore = memory.NewWalletStore()
		sessionStore = memory.NewSessionStore()
		tradeStore = memory.NewTradeStore()
		stepStore = memory.NewChainStepStore()
	} else {
		pool, err := pgstore.NewPool(ctx, p.postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		walletStore = pgstore.NewWalletStore(pool)
		sessionStore = pgstore.NewSessionStore(pool)
		tradeStore = pgstore.NewTradeStore(pool)
		stepStore = pgstore.NewChainStepStore(pool)
	}

	if p.clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, p.clickhouseDSN)
		if err != nil {
			return fmt.Errorf("connect to clickhouse: %w", err)
		}
		defer conn.Close()
		snapshotStore = chstore.NewBookSnapshotStore(conn)
	}

	client := clob.NewClient(settings.ClobHost, clob.WithTimeout(settings.HTTPTimeout))

	rec := recorder.New(recorder.Options{Trades: tradeStore, Steps: stepStore})
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
		return err
	}

	roster, err := wallets.Load(ctx, p.walletsCSV, walletStore)
	if err != nil {
		return fmt.Errorf("load wallets: %w", err)
	}

	session, err := orchestrator.NewSession(orchestrator.SessionOptions{
		Venue:         client,
		Sequencer:     seq,
		Sessions:      sessionStore,
		Snapshots:     snapshotStore,
		TargetOutcome: settings.TargetOutcome,
	})
	if err != nil {
		return err
	}

	_, err = session.Run(ctx, orchestrator.SessionParams{
		ConditionID: p.conditionID,
		Wallets:     roster,
		Volume:      p.volume,
		Iterations:  p.iterations,
	})
	return err
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	log.Printf("[runner] serving metrics on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[runner] metrics server stopped: %v", err)
	}
}
