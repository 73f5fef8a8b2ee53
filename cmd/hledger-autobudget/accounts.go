package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/juev/hledger-autobudget/internal/book"
	"github.com/juev/hledger-autobudget/internal/budget"
)

func newAccountsCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Show which expense accounts have a budget envelope",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if file != "" {
				a.cfg.Journal = file
			}
			return a.accounts()
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "root journal file")
	return cmd
}

func (a *app) accounts() error {
	resolved, _, err := a.loadJournal(a.cfg)
	if err != nil {
		return err
	}
	ledger := book.New(resolved, book.WithLogger(a.logger))

	corr, err := budget.BuildCorrespondence(ledger, a.cfg.Roots(), a.logger)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EXPENSE\tENVELOPE\tBALANCE")
	for _, p := range corr.Pairs() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			ledger.Account(p.Expense).Path,
			ledger.Account(p.Budget).Path,
			formatBalance(ledger.Balance(p.Budget)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	unmatched := corr.Unmatched()
	if len(unmatched) == 0 {
		return nil
	}
	fmt.Fprintf(a.stdout, "\nwithout envelope (%d):\n", len(unmatched))
	for _, id := range unmatched {
		fmt.Fprintf(a.stdout, "  %s\n", ledger.Account(id).Path)
	}
	return nil
}

func formatBalance(balances map[string]decimal.Decimal) string {
	commodities := make([]string, 0, len(balances))
	for c, amount := range balances {
		if !amount.IsZero() {
			commodities = append(commodities, c)
		}
	}
	if len(commodities) == 0 {
		return "0"
	}
	sort.Strings(commodities)

	parts := make([]string, 0, len(commodities))
	for _, c := range commodities {
		parts = append(parts, strings.TrimSpace(balances[c].String()+" "+c))
	}
	return strings.Join(parts, ", ")
}
