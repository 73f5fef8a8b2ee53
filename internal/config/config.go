// Package config loads hledger-autobudget settings from a YAML file, a
// .env file and the environment, in that order of precedence, lowest
// first. Command-line flags are applied by the caller on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/juev/hledger-autobudget/internal/budget"
)

const (
	EnvJournal   = "LEDGER_FILE"
	EnvSince     = "AUTOBUDGET_SINCE"
	EnvHistoryDB = "AUTOBUDGET_HISTORY_DB"
	EnvLogLevel  = "AUTOBUDGET_LOG_LEVEL"

	DateLayout = "2006-01-02"
)

type Config struct {
	Journal  string   `yaml:"journal"`
	Since    string   `yaml:"since"`
	Accounts Accounts `yaml:"accounts"`
	History  History  `yaml:"history"`
	Log      Log      `yaml:"log"`
	Hledger  Hledger  `yaml:"hledger"`
}

type Accounts struct {
	Expenses          string `yaml:"expenses"`
	Budget            string `yaml:"budget"`
	BudgetedFunds     string `yaml:"budgeted_funds"`
	AvailableToBudget string `yaml:"available_to_budget"`
}

type History struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Hledger struct {
	Path    string        `yaml:"path"`
	Verify  bool          `yaml:"verify"`
	Timeout time.Duration `yaml:"timeout"`
}

func Default() *Config {
	roots := budget.DefaultRoots()
	return &Config{
		Accounts: Accounts{
			Expenses:          roots.Expenses,
			Budget:            roots.Budget,
			BudgetedFunds:     roots.BudgetedFunds,
			AvailableToBudget: roots.AvailableToBudget,
		},
		History: History{Enabled: true},
		Log:     Log{Level: "info", Format: "console"},
		Hledger: Hledger{Path: "hledger", Timeout: 30 * time.Second},
	}
}

// Load builds the configuration. A missing configPath or envFile is an
// error only when it was given explicitly.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := Default()
	if configPath != "" {
		if err := cfg.readFile(configPath); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvJournal); v != "" {
		c.Journal = v
	}
	if v := os.Getenv(EnvSince); v != "" {
		c.Since = v
	}
	if v := os.Getenv(EnvHistoryDB); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Normalize replaces empty or invalid values with defaults.
func (c *Config) Normalize() {
	defaults := Default()
	if c.Accounts.Expenses == "" {
		c.Accounts.Expenses = defaults.Accounts.Expenses
	}
	if c.Accounts.Budget == "" {
		c.Accounts.Budget = defaults.Accounts.Budget
	}
	if c.Accounts.BudgetedFunds == "" {
		c.Accounts.BudgetedFunds = defaults.Accounts.BudgetedFunds
	}
	if c.Accounts.AvailableToBudget == "" {
		c.Accounts.AvailableToBudget = defaults.Accounts.AvailableToBudget
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Hledger.Path == "" {
		c.Hledger.Path = defaults.Hledger.Path
	}
	if c.Hledger.Timeout <= 0 {
		c.Hledger.Timeout = defaults.Hledger.Timeout
	}
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath()
	}
	c.Journal = expandHome(c.Journal)
	c.History.Path = expandHome(c.History.Path)
	c.Since = strings.TrimSpace(c.Since)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if _, err := c.SinceDate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SinceDate returns the configured cutoff, or the zero time when none is
// set.
func (c *Config) SinceDate() (time.Time, error) {
	if c.Since == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, c.Since)
	if err != nil {
		return time.Time{}, fmt.Errorf("since: want YYYY-MM-DD, got %q", c.Since)
	}
	return t, nil
}

func (c *Config) Roots() budget.Roots {
	return budget.Roots{
		Expenses:          c.Accounts.Expenses,
		Budget:            c.Accounts.Budget,
		BudgetedFunds:     c.Accounts.BudgetedFunds,
		AvailableToBudget: c.Accounts.AvailableToBudget,
	}
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".hledger-autobudget.db"
	}
	return filepath.Join(dir, "hledger-autobudget", "history.db")
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
