package budget

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/juev/hledger-autobudget/internal/book"
)

type Pair struct {
	Relative string
	Expense  book.AccountID
	Budget   book.AccountID
}

// Correspondence maps expense accounts to the budget accounts at the same
// path relative to their roots. It is read-only once built.
type Correspondence struct {
	roots         Roots
	budgetedFunds book.AccountID
	byExpense     map[book.AccountID]book.AccountID
	pairs         []Pair
	expenses      map[book.AccountID]bool
	unmatched     []book.AccountID
}

// BuildCorrespondence validates the mandatory accounts and pairs every
// regular expense account with its budget counterpart. A *ConfigError is
// returned when the structure is incomplete.
func BuildCorrespondence(ledger Ledger, roots Roots, logger *zap.Logger) (*Correspondence, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	roots = roots.withDefaults()
	if err := validate(ledger, roots); err != nil {
		return nil, err
	}

	expensesID, _ := ledger.AccountByPath(roots.Expenses)
	fundsID, _ := ledger.AccountByPath(roots.BudgetedFundsPath())
	atbID, _ := ledger.AccountByPath(roots.AvailableToBudgetPath())

	c := &Correspondence{
		roots:         roots,
		budgetedFunds: fundsID,
		byExpense:     make(map[book.AccountID]book.AccountID),
		expenses:      make(map[book.AccountID]bool),
	}

	prefix := roots.Expenses + ":"
	for _, id := range ledger.Descendants(expensesID) {
		c.expenses[id] = true
		expense := ledger.Account(id)
		rel := strings.TrimPrefix(expense.Path, prefix)

		if !isRegularExpense(expense) {
			logger.Debug("skipping expense account",
				zap.String("account", expense.Path),
				zap.Bool("placeholder", expense.Placeholder),
				zap.Stringer("type", expense.Type))
			continue
		}

		budgetID, ok := ledger.AccountByPath(roots.Budget + ":" + rel)
		if !ok || budgetID == fundsID || budgetID == atbID || !isRegularBudget(ledger.Account(budgetID)) {
			c.unmatched = append(c.unmatched, id)
			continue
		}

		c.byExpense[id] = budgetID
		c.pairs = append(c.pairs, Pair{Relative: rel, Expense: id, Budget: budgetID})
	}

	sort.Slice(c.pairs, func(i, j int) bool { return c.pairs[i].Relative < c.pairs[j].Relative })

	logger.Debug("correspondence built",
		zap.Int("pairs", len(c.pairs)),
		zap.Int("unmatched", len(c.unmatched)))
	return c, nil
}

func isRegularExpense(acc *book.Account) bool {
	return !acc.Placeholder && (acc.Type == book.TypeExpense || acc.Type == book.TypeUnknown)
}

func isRegularBudget(acc *book.Account) bool {
	return !acc.Placeholder && (acc.Type == book.TypeAsset || acc.Type == book.TypeUnknown)
}

// Lookup returns the budget account paired with an expense account.
func (c *Correspondence) Lookup(expense book.AccountID) (book.AccountID, bool) {
	id, ok := c.byExpense[expense]
	return id, ok
}

func (c *Correspondence) Len() int {
	return len(c.pairs)
}

// Pairs returns the pairs ordered by relative path.
func (c *Correspondence) Pairs() []Pair {
	return append([]Pair(nil), c.pairs...)
}

// Unmatched returns the expense accounts without a usable budget
// counterpart, in tree order.
func (c *Correspondence) Unmatched() []book.AccountID {
	return append([]book.AccountID(nil), c.unmatched...)
}

func (c *Correspondence) BudgetedFunds() book.AccountID {
	return c.budgetedFunds
}

func (c *Correspondence) Roots() Roots {
	return c.roots
}

func (c *Correspondence) underExpenses(id book.AccountID) bool {
	return c.expenses[id]
}
