// Package config loads runtime settings from environment variables,
// optionally seeded from a local .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	// Venue API
	ClobHost string

	// Files/paths
	WalletsCSV       string
	CheapMarketsFile string

	// Persistence
	PostgresDSN   string
	ClickHouseDSN string

	// Orchestration
	MinActiveMarkets int
	MaxWorkers       int

	// Trading
	TargetOutcome string // outcome label summed by the position oracle

	// Settlement debounce (not a correctness mechanism; reconciliation
	// re-reads are what re-establish correctness)
	SettleDelayMin  time.Duration
	SettleDelayMax  time.Duration
	AcquireDelayMin time.Duration
	AcquireDelayMax time.Duration
	RecheckDelay    time.Duration

	// Operator signal: warn after this many misfill restarts of one walk.
	StuckRestartThreshold int

	// HTTP
	HTTPTimeout time.Duration
}

// Defaults mirrored by Load when the environment is silent.
const (
	DefaultClobHost         = "https://clob.polymarket.com"
	DefaultWalletsCSV       = "wallets.csv"
	DefaultCheapMarketsFile = "cheap_markets.txt"
	DefaultTargetOutcome    = "yes"
)

// Load builds Settings from the environment, reading .env first if present.
func Load() Settings {
	LoadEnvFile(".env")

	return Settings{
		ClobHost:         envString("CLOB_HOST", DefaultClobHost),
		WalletsCSV:       envString("WALLETS_CSV", DefaultWalletsCSV),
		CheapMarketsFile: envString("CHEAP_MARKETS_FILE", DefaultCheapMarketsFile),

		PostgresDSN:   envString("POSTGRES_DSN", ""),
		ClickHouseDSN: envString("CLICKHOUSE_DSN", ""),

		MinActiveMarkets: envInt("MIN_ACTIVE_MARKETS", 20),
		MaxWorkers:       envInt("MAX_WORKERS", 10),

		TargetOutcome: envString("TARGET_OUTCOME", DefaultTargetOutcome),

		SettleDelayMin:  envDuration("SETTLE_DELAY_MIN", 4*time.Second),
		SettleDelayMax:  envDuration("SETTLE_DELAY_MAX", 8*time.Second),
		AcquireDelayMin: envDuration("ACQUIRE_DELAY_MIN", 10*time.Second),
		AcquireDelayMax: envDuration("ACQUIRE_DELAY_MAX", 13*time.Second),
		RecheckDelay:    envDuration("RECHECK_DELAY", 2*time.Second),

		StuckRestartThreshold: envInt("STUCK_RESTART_THRESHOLD", 5),

		HTTPTimeout: envDuration("HTTP_TIMEOUT", 5*time.Second),
	}
}

// LoadEnvFile loads KEY=VALUE pairs into the environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, val)
		}
	}
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// envDuration accepts Go duration syntax ("4s") or a bare number of seconds.
func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}
