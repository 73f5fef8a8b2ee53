// Package budget appends envelope-budgeting postings to expense
// transactions. Every qualifying expense posting is mirrored on the Budget
// account at the same relative path, and one Budgeted Funds posting per
// commodity keeps the transaction balanced.
package budget

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/juev/hledger-autobudget/internal/ast"
	"github.com/juev/hledger-autobudget/internal/book"
)

// Ledger is the in-memory book the engine reads and appends to.
// *book.Book implements it.
type Ledger interface {
	AccountByPath(path string) (book.AccountID, bool)
	Account(id book.AccountID) *book.Account
	Descendants(id book.AccountID) []book.AccountID
	Transactions() []*book.Transaction
	AddSplit(tx book.TxID, account book.AccountID, amount decimal.Decimal, commodity string, style ast.AmountStyle) error
	Commit(ctx context.Context) error
}

// Roots names the accounts that anchor the budget. Names are matched
// case-sensitively.
type Roots struct {
	Expenses          string
	Budget            string
	BudgetedFunds     string
	AvailableToBudget string
}

func DefaultRoots() Roots {
	return Roots{
		Expenses:          "Expenses",
		Budget:            "Budget",
		BudgetedFunds:     "Budgeted Funds",
		AvailableToBudget: "Available to Budget",
	}
}

func (r Roots) withDefaults() Roots {
	d := DefaultRoots()
	if r.Expenses == "" {
		r.Expenses = d.Expenses
	}
	if r.Budget == "" {
		r.Budget = d.Budget
	}
	if r.BudgetedFunds == "" {
		r.BudgetedFunds = d.BudgetedFunds
	}
	if r.AvailableToBudget == "" {
		r.AvailableToBudget = d.AvailableToBudget
	}
	return r
}

func (r Roots) BudgetedFundsPath() string {
	return r.Budget + ":" + r.BudgetedFunds
}

func (r Roots) AvailableToBudgetPath() string {
	return r.Budget + ":" + r.AvailableToBudget
}
