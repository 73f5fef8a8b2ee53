package book

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juev/hledger-autobudget/internal/ast"
)

type AccountID int

type TxID int

const NoAccount AccountID = -1

type AccountType int

const (
	TypeUnknown AccountType = iota
	TypeAsset
	TypeLiability
	TypeEquity
	TypeIncome
	TypeExpense
	TypeCurrencyTrading
)

func (t AccountType) String() string {
	switch t {
	case TypeAsset:
		return "asset"
	case TypeLiability:
		return "liability"
	case TypeEquity:
		return "equity"
	case TypeIncome:
		return "income"
	case TypeExpense:
		return "expense"
	case TypeCurrencyTrading:
		return "currency-trading"
	}
	return "unknown"
}

// ParseAccountType reads the value of an hledger type: tag. Both the one
// letter codes and the full names are accepted, case-insensitively.
func ParseAccountType(value string) (AccountType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "a", "asset", "assets", "c", "cash":
		return TypeAsset, true
	case "l", "liability", "liabilities":
		return TypeLiability, true
	case "e", "equity":
		return TypeEquity, true
	case "r", "revenue", "revenues", "income":
		return TypeIncome, true
	case "x", "expense", "expenses":
		return TypeExpense, true
	case "v", "conversion":
		return TypeCurrencyTrading, true
	}
	return TypeUnknown, false
}

// inferAccountType guesses a type from a top-level account name the way
// hledger does for undeclared accounts.
func inferAccountType(topLevel string) AccountType {
	switch strings.ToLower(topLevel) {
	case "asset", "assets":
		return TypeAsset
	case "liability", "liabilities", "debt", "debts":
		return TypeLiability
	case "equity":
		return TypeEquity
	case "income", "revenue", "revenues":
		return TypeIncome
	case "expense", "expenses":
		return TypeExpense
	}
	return TypeUnknown
}

type Account struct {
	ID       AccountID
	Name     string
	Path     string
	Type     AccountType
	Parent   AccountID
	Children []AccountID
	// Placeholder accounts group other accounts and take no postings of
	// their own.
	Placeholder bool
	Declared    bool

	explicitType AccountType
}

type Split struct {
	Tx        TxID
	Account   AccountID
	Amount    decimal.Decimal
	Commodity string
	Style     ast.AmountStyle
	Virtual   ast.VirtualType
	// Inferred splits come from a posting whose amount was left out.
	Inferred bool
	// Added splits were created in this session and are not yet written.
	Added bool
}

// Source locates a transaction in its journal file. Lines are 1-based.
type Source struct {
	Path      string
	StartLine int
	EndLine   int
	Indent    string
}

type Transaction struct {
	ID          TxID
	Date        time.Time
	Description string
	Splits      []Split
	Source      Source
	Dirty       bool

	node *ast.Transaction
}

// AddedSplits returns the splits not yet written to the journal.
func (t *Transaction) AddedSplits() []Split {
	var added []Split
	for _, s := range t.Splits {
		if s.Added {
			added = append(added, s)
		}
	}
	return added
}
