package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/juev/hledger-autobudget/internal/ast"
	"github.com/juev/hledger-autobudget/internal/book"
)

// PlannedSplit is a split the engine intends to append.
type PlannedSplit struct {
	Account   book.AccountID
	Amount    decimal.Decimal
	Commodity string
	Style     ast.AmountStyle
}

// IsBudgeted reports whether tx already has a split on the Budgeted Funds
// account, whatever its amount.
func IsBudgeted(tx *book.Transaction, budgetedFunds book.AccountID) bool {
	for _, s := range tx.Splits {
		if s.Account == budgetedFunds {
			return true
		}
	}
	return false
}

func qualifies(s book.Split, c *Correspondence) (book.AccountID, bool) {
	if s.Virtual == ast.VirtualUnbalanced {
		return book.NoAccount, false
	}
	return c.Lookup(s.Account)
}

type fundsTotal struct {
	amount decimal.Decimal
	style  ast.AmountStyle
}

// Synthesize returns the splits that budget tx: a mirrored split with the
// opposite amount for each qualifying split, followed by one Budgeted Funds
// split per commodity in order of first appearance. Splits on the same
// account are never merged and zero amounts are kept. The result is empty
// when nothing qualifies.
func Synthesize(tx *book.Transaction, c *Correspondence) []PlannedSplit {
	var (
		planned []PlannedSplit
		order   []string
		totals  = make(map[string]*fundsTotal)
	)

	for _, s := range tx.Splits {
		budgetID, ok := qualifies(s, c)
		if !ok {
			continue
		}

		planned = append(planned, PlannedSplit{
			Account:   budgetID,
			Amount:    s.Amount.Neg(),
			Commodity: s.Commodity,
			Style:     s.Style,
		})

		t, seen := totals[s.Commodity]
		if !seen {
			t = &fundsTotal{style: s.Style}
			totals[s.Commodity] = t
			order = append(order, s.Commodity)
		}
		t.amount = t.amount.Add(s.Amount)
		t.style.Precision = max(t.style.Precision, s.Style.Precision)
	}

	for _, commodity := range order {
		t := totals[commodity]
		planned = append(planned, PlannedSplit{
			Account:   c.BudgetedFunds(),
			Amount:    t.amount,
			Commodity: commodity,
			Style:     t.style,
		})
	}
	return planned
}

// Apply appends planned splits to the transaction through the ledger.
func Apply(ledger Ledger, tx book.TxID, planned []PlannedSplit) error {
	for _, p := range planned {
		if err := ledger.AddSplit(tx, p.Account, p.Amount, p.Commodity, p.Style); err != nil {
			return fmt.Errorf("add split to transaction %d: %w", tx, err)
		}
	}
	return nil
}
