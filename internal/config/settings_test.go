package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s := Load()

	assert.Equal(t, DefaultClobHost, s.ClobHost)
	assert.Equal(t, DefaultWalletsCSV, s.WalletsCSV)
	assert.Equal(t, DefaultTargetOutcome, s.TargetOutcome)
	assert.Equal(t, 20, s.MinActiveMarkets)
	assert.Equal(t, 4*time.Second, s.SettleDelayMin)
	assert.Equal(t, 8*time.Second, s.SettleDelayMax)
	assert.Equal(t, 2*time.Second, s.RecheckDelay)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CLOB_HOST", "https://clob.example.test")
	t.Setenv("MAX_WORKERS", "3")
	t.Setenv("SETTLE_DELAY_MIN", "1s")
	t.Setenv("ACQUIRE_DELAY_MAX", "2.5") // bare seconds
	t.Setenv("TARGET_OUTCOME", "no")

	s := Load()

	assert.Equal(t, "https://clob.example.test", s.ClobHost)
	assert.Equal(t, 3, s.MaxWorkers)
	assert.Equal(t, time.Second, s.SettleDelayMin)
	assert.Equal(t, 2500*time.Millisecond, s.AcquireDelayMax)
	assert.Equal(t, "no", s.TargetOutcome)
}

func TestLoadFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_WORKERS", "not-a-number")
	t.Setenv("RECHECK_DELAY", "soon")

	s := Load()

	assert.Equal(t, 10, s.MaxWorkers)
	assert.Equal(t, 2*time.Second, s.RecheckDelay)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nCROSSFILL_TEST_A=hello\nCROSSFILL_TEST_B=\"quoted\"\nmalformed line\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("CROSSFILL_TEST_B", "preset")
	defer os.Unsetenv("CROSSFILL_TEST_A")

	LoadEnvFile(path)

	assert.Equal(t, "hello", os.Getenv("CROSSFILL_TEST_A"))
	// Existing environment wins over the file.
	assert.Equal(t, "preset", os.Getenv("CROSSFILL_TEST_B"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	// Must be a no-op, not an error.
	LoadEnvFile(filepath.Join(t.TempDir(), "does-not-exist.env"))
}
