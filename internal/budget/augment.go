package budget

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/juev/hledger-autobudget/internal/book"
)

type Options struct {
	// Since excludes transactions dated before it. The zero value keeps
	// every transaction.
	Since  time.Time
	DryRun bool
	Roots  Roots
	Logger *zap.Logger
}

type AugmentedTx struct {
	ID          book.TxID
	Date        time.Time
	Description string
	Source      book.Source
	Splits      []PlannedSplit
}

type Report struct {
	Scanned         int
	BeforeCutoff    int
	AlreadyBudgeted int
	NoQualifying    int
	Augmented       int
	SplitsAdded     int
	Transactions    []AugmentedTx
	Correspondence  *Correspondence
}

// Augment budgets every eligible transaction of the ledger and commits
// once at the end unless DryRun is set. A canceled context stops the scan
// between transactions and nothing is committed.
func Augment(ctx context.Context, ledger Ledger, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	corr, err := BuildCorrespondence(ledger, opts.Roots, logger)
	if err != nil {
		return nil, err
	}

	report := &Report{Correspondence: corr}
	cutoff := calendarDate(opts.Since)

	for _, tx := range ledger.Transactions() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		if !opts.Since.IsZero() && calendarDate(tx.Date).Before(cutoff) {
			report.BeforeCutoff++
			continue
		}
		if IsBudgeted(tx, corr.BudgetedFunds()) {
			report.AlreadyBudgeted++
			logger.Debug("already budgeted", txFields(tx)...)
			continue
		}

		logUnmatched(logger, ledger, corr, tx)

		planned := Synthesize(tx, corr)
		if len(planned) == 0 {
			report.NoQualifying++
			continue
		}
		if err := Apply(ledger, tx.ID, planned); err != nil {
			return report, err
		}

		report.Augmented++
		report.SplitsAdded += len(planned)
		report.Transactions = append(report.Transactions, AugmentedTx{
			ID:          tx.ID,
			Date:        tx.Date,
			Description: tx.Description,
			Source:      tx.Source,
			Splits:      planned,
		})
		logger.Debug("transaction budgeted", append(txFields(tx), zap.Int("splits", len(planned)))...)
	}

	if !opts.DryRun {
		if err := ledger.Commit(ctx); err != nil {
			return report, fmt.Errorf("commit: %w", err)
		}
	}

	logger.Info("budget pass finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("before_cutoff", report.BeforeCutoff),
		zap.Int("already_budgeted", report.AlreadyBudgeted),
		zap.Int("no_qualifying", report.NoQualifying),
		zap.Int("augmented", report.Augmented),
		zap.Int("splits_added", report.SplitsAdded),
		zap.Bool("dry_run", opts.DryRun))
	return report, nil
}

func logUnmatched(logger *zap.Logger, ledger Ledger, corr *Correspondence, tx *book.Transaction) {
	for _, s := range tx.Splits {
		if !corr.underExpenses(s.Account) {
			continue
		}
		if _, ok := corr.Lookup(s.Account); ok {
			continue
		}
		logger.Debug("no budget account matching",
			append(txFields(tx), zap.String("account", ledger.Account(s.Account).Path))...)
	}
}

func txFields(tx *book.Transaction) []zap.Field {
	return []zap.Field{
		zap.String("file", tx.Source.Path),
		zap.Int("line", tx.Source.StartLine),
		zap.String("date", tx.Date.Format(time.DateOnly)),
		zap.String("description", tx.Description),
	}
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
