package budget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/juev/hledger-autobudget/internal/book"
)

var (
	ErrMissingAccount = errors.New("missing account")
	ErrAccountType    = errors.New("wrong account type")
)

// ConfigError reports every problem with the mandatory account structure.
// Nothing is scanned or written when it is returned.
type ConfigError struct {
	Problems []string
	errs     []error
}

func (e *ConfigError) Error() string {
	return "budget accounts: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigError) Unwrap() []error {
	return e.errs
}

func (e *ConfigError) add(err error) {
	e.errs = append(e.errs, err)
	e.Problems = append(e.Problems, err.Error())
}

type mandatoryAccount struct {
	path string
	want book.AccountType
}

func mandatoryAccounts(r Roots) []mandatoryAccount {
	return []mandatoryAccount{
		{r.Expenses, book.TypeExpense},
		{r.Budget, book.TypeAsset},
		{r.BudgetedFundsPath(), book.TypeLiability},
		{r.AvailableToBudgetPath(), book.TypeAsset},
	}
}

// validate checks that each mandatory account exists and, when its type is
// known, has the expected type.
func validate(ledger Ledger, r Roots) error {
	cfgErr := &ConfigError{}
	for _, m := range mandatoryAccounts(r) {
		id, ok := ledger.AccountByPath(m.path)
		if !ok {
			cfgErr.add(fmt.Errorf("%w: no %s account named %q", ErrMissingAccount, m.want, m.path))
			continue
		}
		acc := ledger.Account(id)
		if acc.Type != book.TypeUnknown && acc.Type != m.want {
			cfgErr.add(fmt.Errorf("%w: %q is %s, want %s", ErrAccountType, m.path, acc.Type, m.want))
		}
	}
	if len(cfgErr.errs) > 0 {
		return cfgErr
	}
	return nil
}
