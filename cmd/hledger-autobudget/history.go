package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/juev/hledger-autobudget/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := history.Open(a.cfg.History.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if runID != "" {
				return a.printRun(cmd, db, runID)
			}
			return a.printRuns(cmd, db, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "show the transactions of one run")
	return cmd
}

func (a *app) printRuns(cmd *cobra.Command, db *history.DB, limit int) error {
	runs, err := db.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tJOURNAL\tSINCE\tSCANNED\tAUGMENTED\tPOSTINGS\tDRY RUN")
	for _, r := range runs {
		since := r.Since
		if since == "" {
			since = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%t\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Journal,
			since,
			r.Scanned,
			r.Augmented,
			r.SplitsAdded,
			r.DryRun)
	}
	return tw.Flush()
}

func (a *app) printRun(cmd *cobra.Command, db *history.DB, runID string) error {
	txs, err := db.Transactions(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintf(a.stdout, "no transactions recorded for run %s\n", runID)
		return nil
	}
	for _, tx := range txs {
		fmt.Fprintf(a.stdout, "%s %s (%s:%d) +%d\n", tx.Date, tx.Description, tx.File, tx.Line, tx.Splits)
	}
	return nil
}
