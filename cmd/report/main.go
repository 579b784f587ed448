// Package main renders read-only reports over recorded sessions: recent
// sessions, one session's detail, and per-wallet activity.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"crossfill/internal/config"
	"crossfill/internal/reporting"
	pgstore "crossfill/internal/storage/postgres"
)

func main() {
	settings := config.Load()

	postgresDSN := flag.String("postgres-dsn", settings.PostgresDSN, "PostgreSQL connection string (required)")
	sessionsLimit := flag.Int("sessions", 10, "Number of recent sessions to list")
	sessionID := flag.String("session", "", "Render one session's detail instead of the listing")
	walletsView := flag.Bool("wallets", false, "Render per-wallet activity instead of the listing")
	outputDir := flag.String("output-dir", "", "Write reports (plus CSV exports) to this directory instead of stdout")
	flag.Parse()

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	gen := reporting.NewGenerator(
		pgstore.NewSessionStore(pool),
		pgstore.NewTradeStore(pool),
		pgstore.NewChainStepStore(pool),
		pgstore.NewWalletStore(pool),
	)

	switch {
	case *sessionID != "":
		err = renderSessionDetail(ctx, gen, *sessionID, *outputDir)
	case *walletsView:
		err = renderWallets(ctx, gen, *outputDir)
	default:
		err = renderSessions(ctx, gen, *sessionsLimit, *outputDir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func renderSessions(ctx context.Context, gen *reporting.Generator, limit int, outputDir string) error {
	rows, err := gen.RecentSessions(ctx, limit)
	if err != nil {
		return err
	}

	md := reporting.RenderSessionsMarkdown(rows)
	if outputDir == "" {
		fmt.Print(md)
		return nil
	}
	if err := writeFile(outputDir, "SESSIONS.md", md); err != nil {
		return err
	}
	return writeFile(outputDir, "sessions.csv", reporting.RenderSessionsCSV(rows))
}

func renderSessionDetail(ctx context.Context, gen *reporting.Generator, sessionID, outputDir string) error {
	detail, err := gen.SessionDetail(ctx, sessionID)
	if err != nil {
		return err
	}

	md := reporting.RenderSessionDetailMarkdown(detail)
	if outputDir == "" {
		fmt.Print(md)
		return nil
	}
	if err := writeFile(outputDir, "SESSION_"+sessionID+".md", md); err != nil {
		return err
	}
	return writeFile(outputDir, "trades_"+sessionID+".csv", reporting.RenderTradesCSV(detail.Trades))
}

func renderWallets(ctx context.Context, gen *reporting.Generator, outputDir string) error {
	rows, err := gen.WalletActivity(ctx)
	if err != nil {
		return err
	}

	md := reporting.RenderWalletsMarkdown(rows)
	if outputDir == "" {
		fmt.Print(md)
		return nil
	}
	return writeFile(outputDir, "WALLETS.md", md)
}

func writeFile(dir, name, content string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
