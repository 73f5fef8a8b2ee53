package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/juev/hledger-autobudget/internal/analyzer"
	"github.com/juev/hledger-autobudget/internal/book"
	"github.com/juev/hledger-autobudget/internal/budget"
	"github.com/juev/hledger-autobudget/internal/cli"
	"github.com/juev/hledger-autobudget/internal/config"
	"github.com/juev/hledger-autobudget/internal/history"
	"github.com/juev/hledger-autobudget/internal/include"
	"github.com/juev/hledger-autobudget/internal/workspace"
)

var errUnbalanced = errors.New("journal has unbalanced transactions")

type runOptions struct {
	file      string
	since     string
	dryRun    bool
	editsJSON bool
	verify    bool
	noHistory bool
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Add budget postings to unbudgeted expense transactions",
		Long: `Scan the journal and, for every transaction without a Budgeted Funds
posting, add a mirrored posting on the matching Budget account for each
expense posting plus one Budgeted Funds posting per commodity.

New postings are inserted after the last line of their transaction; the
rest of every file is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("verify") {
				a.cfg.Hledger.Verify = opts.verify
			}
			return a.run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "root journal file")
	flags.StringVar(&opts.since, "since", "", "only transactions on or after this date (YYYY-MM-DD)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "report what would change without writing")
	flags.BoolVar(&opts.editsJSON, "edits-json", false, "print the changes as an LSP WorkspaceEdit instead of writing")
	flags.BoolVar(&opts.verify, "verify", false, "run hledger check after writing")
	flags.BoolVar(&opts.noHistory, "no-history", false, "do not record this run")
	return cmd
}

func (a *app) run(ctx context.Context, opts runOptions) error {
	cfg := a.cfg
	if opts.file != "" {
		cfg.Journal = opts.file
	}
	if opts.since != "" {
		cfg.Since = opts.since
	}
	since, err := cfg.SinceDate()
	if err != nil {
		return err
	}
	dryRun := opts.dryRun || opts.editsJSON
	started := time.Now()

	resolved, rootPath, err := a.loadJournal(cfg)
	if err != nil {
		return err
	}
	if err := a.checkJournal(resolved); err != nil {
		return err
	}

	var store book.Store = book.NewFileStore()
	if dryRun {
		store = book.NewMemoryStore()
	}
	ledger := book.New(resolved, book.WithStore(store), book.WithLogger(a.logger))

	report, err := budget.Augment(ctx, ledger, budget.Options{
		Since:  since,
		DryRun: dryRun,
		Roots:  cfg.Roots(),
		Logger: a.logger,
	})
	if err != nil {
		return err
	}

	if opts.editsJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ledger.WorkspaceEdit()); err != nil {
			return fmt.Errorf("encode edits: %w", err)
		}
	} else {
		a.printReport(report, dryRun)
	}

	if cfg.Hledger.Verify && !dryRun && report.Augmented > 0 {
		if err := a.verify(ctx, cfg.Hledger, rootPath); err != nil {
			return err
		}
	}

	if cfg.History.Enabled && !opts.noHistory {
		a.recordHistory(ctx, cfg, rootPath, started, dryRun, report)
	}
	return nil
}

func (a *app) loadJournal(cfg *config.Config) (*include.ResolvedJournal, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("working directory: %w", err)
	}

	loader := include.NewLoader(include.WithLogger(a.logger))
	opts := []workspace.Option{workspace.WithLogger(a.logger)}
	if cfg.Journal != "" {
		opts = append(opts, workspace.WithJournal(cfg.Journal))
	}
	ws := workspace.New(dir, loader, opts...)

	resolved, err := ws.Load()
	if err != nil {
		return nil, "", err
	}
	a.logger.Info("journal loaded",
		zap.String("path", ws.RootJournalPath()),
		zap.Int("files", len(resolved.Files)),
		zap.Int("transactions", resolved.TransactionCount()))
	return resolved, ws.RootJournalPath(), nil
}

// checkJournal refuses journals with unbalanced transactions: the budget
// postings could not be placed reliably.
func (a *app) checkJournal(resolved *include.ResolvedJournal) error {
	result := analyzer.New().Analyze(resolved)
	for _, d := range result.Diagnostics {
		fields := []zap.Field{
			zap.String("file", d.Path),
			zap.Int("line", d.Range.Start.Line),
			zap.String("code", d.Code),
		}
		if d.Severity == analyzer.SeverityError {
			a.logger.Error(d.Message, fields...)
			fmt.Fprintf(a.stderr, "%s:%d: %s\n", d.Path, d.Range.Start.Line, d.Message)
			continue
		}
		a.logger.Debug(d.Message, fields...)
	}
	if result.HasErrors() {
		return errUnbalanced
	}
	return nil
}

func (a *app) printReport(report *budget.Report, dryRun bool) {
	verb := "budgeted"
	if dryRun {
		verb = "would budget"
	}
	for _, tx := range report.Transactions {
		fmt.Fprintf(a.stdout, "%s %s (%s:%d) +%d\n",
			tx.Date.Format(config.DateLayout),
			tx.Description,
			filepath.Base(tx.Source.Path),
			tx.Source.StartLine,
			len(tx.Splits))
	}
	fmt.Fprintf(a.stdout, "%s %d of %d transactions, %d postings; %d already budgeted, %d without budget accounts, %d before cutoff\n",
		verb,
		report.Augmented,
		report.Scanned,
		report.SplitsAdded,
		report.AlreadyBudgeted,
		report.NoQualifying,
		report.BeforeCutoff)
}

func (a *app) verify(ctx context.Context, cfg config.Hledger, rootPath string) error {
	client := cli.NewClient(cfg.Path, cfg.Timeout)
	if !client.Available() {
		a.logger.Warn("hledger not found, skipping verification", zap.String("path", cfg.Path))
		return nil
	}
	if err := client.Check(ctx, rootPath); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	a.logger.Info("hledger check passed",
		zap.String("journal", rootPath),
		zap.String("hledger", client.Version()))
	return nil
}

func (a *app) recordHistory(ctx context.Context, cfg *config.Config, rootPath string, started time.Time, dryRun bool, report *budget.Report) {
	db, err := history.Open(cfg.History.Path)
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
		return
	}
	defer db.Close()

	run := history.NewRun(rootPath, started)
	run.Since = cfg.Since
	run.DryRun = dryRun
	run.FinishedAt = time.Now()
	run.Scanned = report.Scanned
	run.Augmented = report.Augmented
	run.SplitsAdded = report.SplitsAdded
	for _, tx := range report.Transactions {
		run.Transactions = append(run.Transactions, history.Transaction{
			Date:        tx.Date.Format(config.DateLayout),
			Description: tx.Description,
			File:        tx.Source.Path,
			Line:        tx.Source.StartLine,
			Splits:      len(tx.Splits),
		})
	}

	if err := db.Record(ctx, run); err != nil {
		a.logger.Warn("recording run failed", zap.Error(err))
		return
	}
	a.logger.Debug("run recorded", zap.String("id", run.ID), zap.String("db", db.Path()))
}
