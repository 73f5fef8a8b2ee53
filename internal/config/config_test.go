package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juev/hledger-autobudget/internal/budget"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvJournal, EnvSince, EnvHistoryDB, EnvLogLevel} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, budget.DefaultRoots(), cfg.Roots())
	assert.True(t, cfg.History.Enabled)
	assert.NotEmpty(t, cfg.History.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "hledger", cfg.Hledger.Path)
	assert.Equal(t, 30*time.Second, cfg.Hledger.Timeout)

	since, err := cfg.SinceDate()
	require.NoError(t, err)
	assert.True(t, since.IsZero())
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "autobudget.yaml")
	writeFile(t, path, `journal: /ledger/main.journal
since: 2024-03-01
accounts:
  expenses: Spending
  budgeted_funds: Allocated
history:
  enabled: false
  path: /tmp/runs.db
log:
  level: DEBUG
  format: json
hledger:
  verify: true
  timeout: 5s
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "/ledger/main.journal", cfg.Journal)
	assert.Equal(t, budget.Roots{
		Expenses:          "Spending",
		Budget:            "Budget",
		BudgetedFunds:     "Allocated",
		AvailableToBudget: "Available to Budget",
	}, cfg.Roots())
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "/tmp/runs.db", cfg.History.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Hledger.Verify)
	assert.Equal(t, 5*time.Second, cfg.Hledger.Timeout)

	since, err := cfg.SinceDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), since)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "autobudget.yaml")
	writeFile(t, path, "journal: /ledger/main.journal\nsince: 2024-03-01\n")
	envFile := filepath.Join(dir, "custom.env")
	writeFile(t, envFile, "AUTOBUDGET_HISTORY_DB=/data/history.db\n")

	t.Setenv(EnvJournal, "/other/2024.journal")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "/other/2024.journal", cfg.Journal)
	assert.Equal(t, "2024-03-01", cfg.Since)
	assert.Equal(t, "/data/history.db", cfg.History.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_DotEnvInWorkingDirectory(t *testing.T) {
	clearEnv(t)
	writeFile(t, ".env", "AUTOBUDGET_SINCE=2024-02-02\n")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-02", cfg.Since)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"), "")
	assert.ErrorContains(t, err, "read config")

	_, err = Load("", filepath.Join(dir, "missing.env"))
	assert.ErrorContains(t, err, "load env file")

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "journal: [unterminated\n")
	_, err = Load(bad, "")
	assert.ErrorContains(t, err, "parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "since: 01/02/2024\nlog:\n  level: loud\n  format: xml\n")
	_, err = Load(invalid, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "since: want YYYY-MM-DD")
	assert.Contains(t, err.Error(), `unknown level "loud"`)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestNormalize_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := &Config{Journal: "~/ledger/main.journal", History: History{Path: "~/h.db"}}
	cfg.Normalize()

	assert.Equal(t, filepath.Join(home, "ledger", "main.journal"), cfg.Journal)
	assert.Equal(t, filepath.Join(home, "h.db"), cfg.History.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}
